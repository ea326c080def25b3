package mechanic

import (
	"sort"

	"github.com/kasuganosora/bossarena/game/entity"
)

// State is one mechanic's mutable state for one boss. Each mechanic has
// its own concrete type; Kind tags the variant.
type State interface {
	Kind() Kind
}

type stateKey struct {
	boss entity.ID
	kind Kind
}

// Registry maps (boss, mechanic kind) to state. Entries are created lazily
// by the engine and removed synchronously by the sweeper.
type Registry struct {
	states map[stateKey]State
	kinds  map[entity.ID][]Kind
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		states: make(map[stateKey]State),
		kinds:  make(map[entity.ID][]Kind),
	}
}

// Get returns the state for boss and kind.
func (r *Registry) Get(boss entity.ID, kind Kind) (State, bool) {
	st, ok := r.states[stateKey{boss, kind}]
	return st, ok
}

// Put stores st for boss under its kind, replacing any previous entry.
func (r *Registry) Put(boss entity.ID, st State) {
	k := stateKey{boss, st.Kind()}
	if _, exists := r.states[k]; !exists {
		r.kinds[boss] = append(r.kinds[boss], st.Kind())
	}
	r.states[k] = st
}

// Remove deletes every state held for boss and returns them so the caller
// can tear down owned companions. Removing an unknown boss returns nil.
func (r *Registry) Remove(boss entity.ID) []State {
	kinds, ok := r.kinds[boss]
	if !ok {
		return nil
	}
	out := make([]State, 0, len(kinds))
	for _, k := range kinds {
		key := stateKey{boss, k}
		if st, ok := r.states[key]; ok {
			out = append(out, st)
			delete(r.states, key)
		}
	}
	delete(r.kinds, boss)
	return out
}

// Has reports whether any state exists for boss.
func (r *Registry) Has(boss entity.ID) bool {
	_, ok := r.kinds[boss]
	return ok
}

// Len is the total number of (boss, kind) entries.
func (r *Registry) Len() int { return len(r.states) }

// Bosses returns the boss IDs with state, ascending.
func (r *Registry) Bosses() []entity.ID {
	out := make([]entity.ID, 0, len(r.kinds))
	for id := range r.kinds {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
