// Package encounter runs a boss encounter: the fixed-step loop that feeds
// the mechanic engine, advances boss phases and publishes events and
// snapshots.
package encounter

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kasuganosora/bossarena/cache"
	"github.com/kasuganosora/bossarena/game/entity"
	"github.com/kasuganosora/bossarena/game/mechanic"
	"github.com/kasuganosora/bossarena/game/script"
	"go.uber.org/zap"
)

// Driver steers the player from outside the simulation.
type Driver interface {
	Tick(ctx context.Context, view script.View) (script.Command, error)
}

// Config configures an Encounter.
type Config struct {
	TickRate        int           // steps per second; 0 = 60
	Seed            int64         // 0 = time-seeded
	Duration        time.Duration // simulated time limit; 0 = none
	SnapshotEvery   int           // ticks between cache snapshot writes; 0 = 15
	DoubleBounce    bool
	PhaseThresholds map[string][]float64 // overrides per boss type

	Driver Driver      // optional
	Cache  cache.Cache // optional snapshot store
	Sinks  []Sink
	Logger *zap.Logger
}

// Snapshot is a copy of encounter state that is safe to hand to other
// goroutines.
type Snapshot struct {
	EncounterID string             `json:"encounter_id"`
	Tick        int64              `json:"tick"`
	Time        float64            `json:"time"`
	Over        bool               `json:"over"`
	Player      *entity.Player     `json:"player"`
	Bosses      []entity.Boss      `json:"bosses"`
	Enemies     []entity.Enemy     `json:"enemies"`
	Companions  []entity.Companion `json:"companions"`
	Visuals     []mechanic.Visual  `json:"visuals"`
}

// Encounter owns one entity store and everything that simulates it.
// Step is not re-entrant; Snapshot and Stop may be called concurrently.
type Encounter struct {
	ID string

	store  *entity.Store
	engine *mechanic.Engine
	phases *PhaseCalculator
	driver Driver
	cache  cache.Cache
	sinks  []Sink
	logger *zap.Logger

	dt            float64
	limit         float64
	snapshotEvery int

	tick     int64
	simTime  float64
	defeated map[entity.ID]bool
	downed   bool

	mu     sync.RWMutex
	snap   Snapshot
	stopCh chan struct{}
}

// New builds an encounter around store.
func New(cfg Config, store *entity.Store) *Encounter {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	if cfg.SnapshotEvery <= 0 {
		cfg.SnapshotEvery = 15
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Encounter{
		ID:            uuid.NewString(),
		store:         store,
		driver:        cfg.Driver,
		cache:         cfg.Cache,
		sinks:         cfg.Sinks,
		dt:            1 / float64(cfg.TickRate),
		limit:         cfg.Duration.Seconds(),
		snapshotEvery: cfg.SnapshotEvery,
		defeated:      make(map[entity.ID]bool),
		stopCh:        make(chan struct{}),
	}
	e.logger = cfg.Logger.With(zap.String("encounter_id", e.ID))
	e.engine = mechanic.NewEngine(mechanic.Config{
		RNG:          rand.New(rand.NewSource(seed)),
		Logger:       e.logger,
		OnEvent:      e.publish,
		DoubleBounce: cfg.DoubleBounce,
	})
	e.phases = NewPhaseCalculator(cfg.PhaseThresholds, e.engine.PooledHealth, e.logger, e.publish)
	e.capture(mechanic.Frame{})
	return e
}

// Engine exposes the mechanic engine for inspection.
func (e *Encounter) Engine() *mechanic.Engine { return e.engine }

// Store returns the entity store. Only the simulation goroutine may use it
// while the encounter is running.
func (e *Encounter) Store() *entity.Store { return e.store }

// Tick is the number of completed steps.
func (e *Encounter) Tick() int64 { return e.tick }

// DT is the fixed step in seconds.
func (e *Encounter) DT() float64 { return e.dt }

func (e *Encounter) publish(ev mechanic.Event) {
	rec := Record{EncounterID: e.ID, Tick: e.tick, Event: ev}
	for _, s := range e.sinks {
		s.Emit(rec)
	}
}

// Step advances the simulation by dt seconds.
func (e *Encounter) Step(ctx context.Context, dt float64) mechanic.Frame {
	e.drive(ctx)

	if p := e.store.Player(); p != nil && p.Health.Current > 0 {
		p.Pos = p.Pos.Add(p.Vel.Scale(dt))
	}

	e.resolveDeaths()
	e.phases.Update(e.store)
	frame := e.engine.Tick(e.store, dt)

	// Shots resolve within the tick they are fired.
	for _, p := range e.store.LiveProjectiles() {
		e.store.ConsumeProjectile(p.ID)
	}
	e.store.PruneProjectiles()

	e.tick++
	e.simTime += dt
	e.resolvePlayer()
	e.capture(frame)
	if e.cache != nil && e.tick%int64(e.snapshotEvery) == 0 {
		e.writeSnapshot(ctx)
	}
	return frame
}

func (e *Encounter) drive(ctx context.Context) {
	if e.driver == nil {
		return
	}
	cmd, err := e.driver.Tick(ctx, script.NewView(e.tick, e.simTime, e.store))
	if err != nil {
		e.logger.Warn("driver tick failed", zap.Int64("tick", e.tick), zap.Error(err))
		return
	}
	if p := e.store.Player(); p != nil {
		if cmd.VX != nil {
			p.Vel.X = *cmd.VX
		}
		if cmd.VY != nil {
			p.Vel.Y = *cmd.VY
		}
	}
	for _, s := range cmd.Fire {
		e.store.AddProjectile(&entity.Projectile{
			Pos:    entity.Vec2{X: s.X, Y: s.Y},
			Damage: s.Damage,
			Radius: s.Radius,
		})
	}
	for _, h := range cmd.Hit {
		if b := e.store.Boss(entity.ID(h.Boss)); b != nil && !b.Dead {
			b.Health.Damage(h.Damage)
		}
	}
}

// resolveDeaths stands in for the health system: enemies and split copies
// die at zero health, a primary boss when its pooled health is gone.
func (e *Encounter) resolveDeaths() {
	for _, en := range e.store.Enemies() {
		if !en.Dead && en.Health.Current <= 0 {
			en.Dead = true
		}
	}
	for _, b := range e.store.Bosses() {
		if b.Dead {
			continue
		}
		if b.Parent != 0 {
			if b.Health.Current <= 0 {
				b.Dead = true
			}
			continue
		}
		if e.engine.PooledHealth(b).Current > 0 {
			continue
		}
		b.Dead = true
		if !e.defeated[b.ID] {
			e.defeated[b.ID] = true
			e.publish(mechanic.NewEvent(b, mechanic.KindOf(b.Type), EventBossDefeated, nil))
		}
	}
}

func (e *Encounter) resolvePlayer() {
	p := e.store.Player()
	if e.downed || p == nil || p.Health.Current > 0 {
		return
	}
	e.downed = true
	p.Vel = entity.Vec2{}
	e.publish(mechanic.Event{Type: EventPlayerDown, Data: map[string]any{"time": e.simTime}})
}

// Over reports whether the player is down or every primary boss is dead.
func (e *Encounter) Over() bool {
	if e.downed {
		return true
	}
	if e.limit > 0 && e.simTime >= e.limit-1e-9 {
		return true
	}
	alive := 0
	for _, b := range e.store.Bosses() {
		if b.Parent == 0 && !b.Dead {
			alive++
		}
	}
	return alive == 0
}

// Advance runs up to n steps back to back, without waiting on the wall
// clock, and stops early once the encounter is over. Returns the number
// of steps taken.
func (e *Encounter) Advance(ctx context.Context, n int) int {
	for i := 0; i < n; i++ {
		if e.Over() || ctx.Err() != nil {
			return i
		}
		e.Step(ctx, e.dt)
	}
	return n
}

// Run steps the encounter in real time until it is over, Stop is called
// or ctx is cancelled. Call in a goroutine.
func (e *Encounter) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(e.dt * float64(time.Second)))
	defer ticker.Stop()
	e.logger.Info("encounter started",
		zap.Int("bosses", len(e.store.Bosses())),
		zap.Float64("dt", e.dt))
	for {
		select {
		case <-ticker.C:
			e.Step(ctx, e.dt)
			if e.Over() {
				e.finish(ctx)
				return nil
			}
		case <-e.stopCh:
			e.finish(ctx)
			return nil
		case <-ctx.Done():
			e.finish(context.Background())
			return ctx.Err()
		}
	}
}

func (e *Encounter) finish(ctx context.Context) {
	if e.cache != nil {
		e.writeSnapshot(ctx)
	}
	e.logger.Info("encounter finished",
		zap.Int64("ticks", e.tick),
		zap.Float64("time", e.simTime),
		zap.Bool("player_down", e.downed))
}

// Stop signals Run to exit.
func (e *Encounter) Stop() {
	select {
	case <-e.stopCh:
	default:
		close(e.stopCh)
	}
}

// Snapshot returns the state captured at the end of the last step.
func (e *Encounter) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

func (e *Encounter) capture(frame mechanic.Frame) {
	s := Snapshot{
		EncounterID: e.ID,
		Tick:        e.tick,
		Time:        e.simTime,
		Visuals:     frame.Visuals,
	}
	if p := e.store.Player(); p != nil {
		cp := *p
		s.Player = &cp
	}
	for _, b := range e.store.Bosses() {
		s.Bosses = append(s.Bosses, *b)
	}
	for _, en := range e.store.Enemies() {
		s.Enemies = append(s.Enemies, *en)
	}
	for _, c := range e.store.Companions() {
		s.Companions = append(s.Companions, *c)
	}
	s.Over = e.Over()

	e.mu.Lock()
	e.snap = s
	e.mu.Unlock()
}

func (e *Encounter) writeSnapshot(ctx context.Context) {
	raw, err := json.Marshal(e.Snapshot())
	if err != nil {
		e.logger.Warn("snapshot not encodable", zap.Error(err))
		return
	}
	if err := e.cache.Set(ctx, cache.SnapshotKey(e.ID), string(raw), 0); err != nil {
		e.logger.Warn("snapshot write failed", zap.Error(err))
	}
}
