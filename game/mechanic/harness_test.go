package mechanic

import (
	"math"
	"math/rand"
	"testing"

	"github.com/kasuganosora/bossarena/game/entity"
	"github.com/stretchr/testify/require"
)

// testArena wires an engine to a fresh store with a seeded RNG and
// records every emitted event.
type testArena struct {
	t      *testing.T
	store  *entity.Store
	engine *Engine
	events []Event
}

func newTestArena(t *testing.T) *testArena {
	return newTestArenaWith(t, Config{})
}

func newTestArenaWith(t *testing.T, cfg Config) *testArena {
	a := &testArena{t: t, store: entity.NewStore()}
	if cfg.RNG == nil {
		cfg.RNG = rand.New(rand.NewSource(42))
	}
	cfg.OnEvent = func(ev Event) { a.events = append(a.events, ev) }
	a.engine = NewEngine(cfg)
	return a
}

func (a *testArena) boss(typ string, phase int, hp float64) *entity.Boss {
	return a.store.AddBoss(&entity.Boss{
		Type:   typ,
		Phase:  phase,
		Speed:  60,
		Health: entity.Health{Current: hp, Max: hp},
		Damage: 10,
	})
}

func (a *testArena) player(x, y float64) *entity.Player {
	p := &entity.Player{
		Pos:    entity.Vec2{X: x, Y: y},
		Health: entity.Health{Current: 100, Max: 100},
		Speed:  200,
	}
	a.store.SetPlayer(p)
	return p
}

// run ticks for the given duration and returns the last frame.
func (a *testArena) run(seconds, dt float64) Frame {
	var f Frame
	n := int(math.Round(seconds / dt))
	for range n {
		f = a.engine.Tick(a.store, dt)
	}
	return f
}

func (a *testArena) tick(dt float64) Frame {
	return a.engine.Tick(a.store, dt)
}

func (a *testArena) count(typ EventType) int {
	n := 0
	for _, ev := range a.events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func (a *testArena) ctx(dt float64) *Context {
	return a.engine.context(a.store, dt)
}

func stateOf[T State](a *testArena, b *entity.Boss) T {
	a.t.Helper()
	st, ok := a.engine.State(b.ID, KindOf(b.Type))
	require.True(a.t, ok, "no state for boss %d", b.ID)
	s, ok := st.(T)
	require.True(a.t, ok)
	return s
}

func (a *testArena) companionsOf(owner entity.ID) []*entity.Companion {
	var out []*entity.Companion
	for _, c := range a.store.Companions() {
		if c.Owner == owner {
			out = append(out, c)
		}
	}
	return out
}

func (a *testArena) copiesOf(parent entity.ID) []*entity.Boss {
	var out []*entity.Boss
	for _, b := range a.store.Bosses() {
		if b.Parent == parent {
			out = append(out, b)
		}
	}
	return out
}
