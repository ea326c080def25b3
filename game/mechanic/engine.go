package mechanic

import (
	"math/rand"
	"time"

	"github.com/kasuganosora/bossarena/game/entity"
	"go.uber.org/zap"
)

// ProjectileSource is the collision collaborator's view of live shots.
// Mechanics query positions and consume the shots that hit a companion.
type ProjectileSource interface {
	LiveProjectiles() []*entity.Projectile
	ConsumeProjectile(id entity.ID)
}

// Context carries the per-tick collaborators handed to every controller.
type Context struct {
	DT     float64
	Store  *entity.Store
	Player *entity.Player // nil when no player is present
	RNG    *rand.Rand
	Shots  ProjectileSource
	Logger *zap.Logger

	doubleBounce bool
	emit         func(Event)
}

// Emit forwards an event to the engine's sink and traces it at Debug.
func (c *Context) Emit(b *entity.Boss, k Kind, typ EventType, data map[string]any) {
	if c.Logger != nil {
		c.Logger.Debug("mechanic event",
			zap.Int64("boss_id", int64(b.ID)),
			zap.String("boss_type", b.Type),
			zap.Int("phase", b.Phase),
			zap.String("mechanic", k.String()),
			zap.String("type", string(typ)),
			zap.Any("data", data))
	}
	if c.emit != nil {
		c.emit(NewEvent(b, k, typ, data))
	}
}

// hurtPlayer applies damage to the player immediately so later mechanics
// in the same tick observe it.
func (c *Context) hurtPlayer(amount float64) {
	if c.Player == nil || amount <= 0 {
		return
	}
	c.Player.Health.Damage(amount)
}

func (c *Context) randRange(lo, hi float64) float64 {
	return lo + c.RNG.Float64()*(hi-lo)
}

// controller is one mechanic's per-tick update function plus its
// state constructor and teardown.
type controller interface {
	newState(c *Context, b *entity.Boss) State
	update(c *Context, b *entity.Boss, st State) Visual
	teardown(c *Context, b entity.ID, st State)
}

// Config configures an Engine.
type Config struct {
	RNG          *rand.Rand  // injectable for deterministic tests
	Logger       *zap.Logger // nil = no-op
	OnEvent      func(Event) // nil = events dropped
	DoubleBounce bool        // chain lightning may revisit each rod once
}

// Engine dispatches every live boss to its mechanic once per tick.
type Engine struct {
	registry *Registry
	table    [kindCount]controller
	rng      *rand.Rand
	logger   *zap.Logger
	onEvent  func(Event)
	bounce   bool
}

// NewEngine creates an Engine with all ten mechanics installed.
func NewEngine(cfg Config) *Engine {
	if cfg.RNG == nil {
		cfg.RNG = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	e := &Engine{
		registry: NewRegistry(),
		rng:      cfg.RNG,
		logger:   cfg.Logger,
		onEvent:  cfg.OnEvent,
		bounce:   cfg.DoubleBounce,
	}
	e.table = [kindCount]controller{
		KindHazardGrid:  hazardGrid{},
		KindGravityWell: gravityWell{},
		KindHive:        hive{},
		KindHeatCycle:   heatCycle{},
		KindDarkness:    darkness{},
		KindPrism:       prism{},
		KindTether:      tether{},
		KindPermafrost:  permafrost{},
		KindArcTyrant:   arcTyrant{},
		KindRecursion:   recursion{},
	}
	return e
}

// Registry exposes the state registry for inspection.
func (e *Engine) Registry() *Registry { return e.registry }

func (e *Engine) context(store *entity.Store, dt float64) *Context {
	return &Context{
		DT:           dt,
		Store:        store,
		Player:       store.Player(),
		RNG:          e.rng,
		Shots:        store,
		Logger:       e.logger,
		doubleBounce: e.bounce,
		emit:         e.onEvent,
	}
}

// Tick runs one simulation step for every boss in creation order. Dead
// bosses are swept instead of updated; state for bosses that vanished from
// the store is swept as well so nothing outlives its owner.
func (e *Engine) Tick(store *entity.Store, dt float64) Frame {
	c := e.context(store, dt)
	var frame Frame

	for _, id := range e.registry.Bosses() {
		if store.Boss(id) == nil {
			e.sweep(c, id)
		}
	}

	for _, b := range store.Bosses() {
		if b.Dead {
			e.sweep(c, b.ID)
			continue
		}
		kind := KindOf(b.Type)
		ctl := e.table[kind]
		if ctl == nil {
			continue
		}
		st, ok := e.registry.Get(b.ID, kind)
		if !ok {
			st = ctl.newState(c, b)
			e.registry.Put(b.ID, st)
			e.logger.Debug("mechanic state created",
				zap.Int64("boss_id", int64(b.ID)),
				zap.String("mechanic", kind.String()))
		}
		frame.Visuals = append(frame.Visuals, ctl.update(c, b, st))
	}
	return frame
}

// Sweep tears down all mechanic state and companions owned by boss.
// Sweeping a boss with no state is a no-op.
func (e *Engine) Sweep(store *entity.Store, boss entity.ID) {
	e.sweep(e.context(store, 0), boss)
}

func (e *Engine) sweep(c *Context, boss entity.ID) {
	states := e.registry.Remove(boss)
	if len(states) == 0 {
		return
	}
	for _, st := range states {
		if ctl := e.table[st.Kind()]; ctl != nil {
			ctl.teardown(c, boss, st)
		}
	}
	e.logger.Info("boss mechanics swept", zap.Int64("boss_id", int64(boss)), zap.Int("states", len(states)))
	if c.emit != nil {
		ev := Event{Boss: boss, Type: EventSwept, Mechanic: states[0].Kind()}
		if b := c.Store.Boss(boss); b != nil {
			ev.BossType, ev.Phase = b.Type, b.Phase
		}
		c.emit(ev)
	}
}

// PooledHealth is the health the phase calculator should use for b: the
// boss's own pool plus every live split copy it owns.
func (e *Engine) PooledHealth(b *entity.Boss) entity.Health {
	h := b.Health
	if st, ok := e.registry.Get(b.ID, KindRecursion); ok {
		for _, cp := range st.(*recursionState).copies {
			if copyAlive(cp) {
				h.Current += cp.Health.Current
			}
		}
	}
	return h
}

// State returns the state of kind held for boss.
func (e *Engine) State(boss entity.ID, kind Kind) (State, bool) {
	return e.registry.Get(boss, kind)
}
