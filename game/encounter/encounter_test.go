package encounter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/kasuganosora/bossarena/cache"
	"github.com/kasuganosora/bossarena/game/entity"
	"github.com/kasuganosora/bossarena/game/mechanic"
	"github.com/kasuganosora/bossarena/game/script"
	"github.com/kasuganosora/bossarena/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDriver struct {
	calls int
	cmd   script.Command
	err   error
	views []script.View
}

func (d *fakeDriver) Tick(_ context.Context, v script.View) (script.Command, error) {
	d.calls++
	d.views = append(d.views, v)
	return d.cmd, d.err
}

type recorded struct {
	records []Record
}

func (r *recorded) Emit(rec Record) { r.records = append(r.records, rec) }

func (r *recorded) types() []mechanic.EventType {
	var out []mechanic.EventType
	for _, rec := range r.records {
		out = append(out, rec.Type)
	}
	return out
}

func (r *recorded) count(typ mechanic.EventType) int {
	n := 0
	for _, rec := range r.records {
		if rec.Type == typ {
			n++
		}
	}
	return n
}

func newTestEncounter(t *testing.T, cfg Config) (*Encounter, *recorded) {
	t.Helper()
	rec := &recorded{}
	cfg.Seed = 42
	cfg.Sinks = append(cfg.Sinks, rec)
	return New(cfg, entity.NewStore()), rec
}

func addBoss(e *Encounter, typ string, hp float64) *entity.Boss {
	return e.Store().AddBoss(&entity.Boss{
		Type:   typ,
		Speed:  60,
		Damage: 10,
		Health: entity.Health{Current: hp, Max: hp},
	})
}

func ptr(v float64) *float64 { return &v }

func TestNew_Defaults(t *testing.T) {
	e, _ := newTestEncounter(t, Config{})
	assert.NotEmpty(t, e.ID)
	assert.InDelta(t, 1.0/60, e.DT(), 1e-12)
	assert.True(t, e.Over(), "empty encounter has nothing to fight")
}

func TestEncounter_Step_PlayerKinematics(t *testing.T) {
	e, _ := newTestEncounter(t, Config{TickRate: 10})
	addBoss(e, mechanic.TypeUmbra, 1000).Pos = entity.Vec2{X: 1000}
	p := &entity.Player{Vel: entity.Vec2{X: 50, Y: -20}, Health: entity.Health{Current: 100, Max: 100}}
	e.Store().SetPlayer(p)

	e.Step(context.Background(), 0.1)
	assert.InDelta(t, 5, p.Pos.X, 1e-9)
	assert.InDelta(t, -2, p.Pos.Y, 1e-9)
	assert.Equal(t, int64(1), e.Tick())
}

func TestEncounter_Step_DriverCommand(t *testing.T) {
	d := &fakeDriver{}
	e, _ := newTestEncounter(t, Config{Driver: d})
	b := addBoss(e, mechanic.TypeArcTyrant, 1000)
	e.Store().SetPlayer(&entity.Player{Pos: entity.Vec2{X: 500}, Health: entity.Health{Current: 100, Max: 100}})
	d.cmd = script.Command{
		VX:   ptr(30),
		Hit:  []script.Hit{{Boss: int64(b.ID), Damage: 100}},
		Fire: []script.Shot{{X: 9999, Y: 9999, Damage: 5, Radius: 2}},
	}

	e.Step(context.Background(), e.DT())

	require.Equal(t, 1, d.calls)
	assert.Equal(t, int64(0), d.views[0].Tick)
	assert.Equal(t, 30.0, e.Store().Player().Vel.X)
	assert.Equal(t, 900.0, b.Health.Current)
	assert.Empty(t, e.Store().LiveProjectiles(), "missed shots expire with the tick")
}

func TestEncounter_Step_DriverErrorIgnored(t *testing.T) {
	d := &fakeDriver{err: errors.New("boom"), cmd: script.Command{VX: ptr(99)}}
	e, _ := newTestEncounter(t, Config{Driver: d})
	addBoss(e, mechanic.TypeUmbra, 1000)
	p := &entity.Player{Health: entity.Health{Current: 100, Max: 100}}
	e.Store().SetPlayer(p)

	e.Step(context.Background(), e.DT())
	assert.Zero(t, p.Vel.X)
}

func TestEncounter_Step_PhaseBeforeMechanics(t *testing.T) {
	e, rec := newTestEncounter(t, Config{})
	b := addBoss(e, mechanic.TypeGridWarden, 1000)
	b.Health.Current = 500

	e.Step(context.Background(), e.DT())

	assert.Equal(t, 2, b.Phase)
	require.NotEmpty(t, rec.records)
	assert.Equal(t, mechanic.EventPhaseEnter, rec.records[0].Type)
	assert.Equal(t, e.ID, rec.records[0].EncounterID)
	assert.Len(t, e.Store().Enemies(), 1)
}

func TestEncounter_Step_BossDefeatedOnce(t *testing.T) {
	e, rec := newTestEncounter(t, Config{})
	b := addBoss(e, mechanic.TypeTether, 1000)
	e.Step(context.Background(), e.DT())
	require.NotEmpty(t, e.Store().Companions())

	b.Health.Current = 0
	e.Step(context.Background(), e.DT())
	e.Step(context.Background(), e.DT())

	assert.True(t, b.Dead)
	assert.Equal(t, 1, rec.count(EventBossDefeated))
	assert.Equal(t, 1, rec.count(mechanic.EventSwept))
	assert.Empty(t, e.Store().Companions())
	assert.True(t, e.Over())
}

func TestEncounter_Step_EnemyDeath(t *testing.T) {
	e, _ := newTestEncounter(t, Config{})
	addBoss(e, mechanic.TypeHive, 1000)
	en := e.Store().AddEnemy(&entity.Enemy{Health: entity.Health{Current: 0, Max: 50}})

	e.Step(context.Background(), e.DT())
	assert.True(t, en.Dead)
}

func TestEncounter_Step_RecursionBossSurvivesOnCopies(t *testing.T) {
	e, _ := newTestEncounter(t, Config{
		PhaseThresholds: map[string][]float64{mechanic.TypeRecursion: {0.65, 0.05, 0.01}},
	})
	b := addBoss(e, mechanic.TypeRecursion, 1000)
	b.Health.Current = 600 // phase 2 splits off one copy

	for range 3 {
		e.Step(context.Background(), e.DT())
	}
	require.Equal(t, 2, b.Phase)
	var copies []*entity.Boss
	for _, x := range e.Store().Bosses() {
		if x.Parent == b.ID {
			copies = append(copies, x)
		}
	}
	require.Len(t, copies, 1)

	b.Health.Current = 0
	e.Step(context.Background(), e.DT())
	assert.False(t, b.Dead, "live copies keep the pool above zero")

	for _, cp := range copies {
		cp.Health.Current = 0
	}
	e.Step(context.Background(), e.DT())
	e.Step(context.Background(), e.DT())
	assert.True(t, b.Dead)
	assert.True(t, e.Over())
}

func TestEncounter_Step_PlayerDown(t *testing.T) {
	e, rec := newTestEncounter(t, Config{})
	addBoss(e, mechanic.TypeUmbra, 1000)
	p := &entity.Player{Vel: entity.Vec2{X: 10}, Health: entity.Health{Current: 0, Max: 100}}
	e.Store().SetPlayer(p)

	e.Step(context.Background(), e.DT())
	e.Step(context.Background(), e.DT())

	assert.Equal(t, 1, rec.count(EventPlayerDown))
	assert.Zero(t, p.Vel.X)
	assert.Zero(t, p.Pos.X, "a downed player does not move")
	assert.True(t, e.Over())
}

func TestEncounter_Advance_StopsWhenOver(t *testing.T) {
	e, _ := newTestEncounter(t, Config{TickRate: 10, Duration: 2 * time.Second})
	addBoss(e, mechanic.TypePrism, 1000)

	n := e.Advance(context.Background(), 100)
	assert.Equal(t, 20, n)
	assert.True(t, e.Over())
	assert.Equal(t, int64(20), e.Snapshot().Tick)
	assert.True(t, e.Snapshot().Over)
}

func TestEncounter_Snapshot_Copies(t *testing.T) {
	e, _ := newTestEncounter(t, Config{})
	b := addBoss(e, mechanic.TypePermafrost, 1000)
	e.Store().SetPlayer(&entity.Player{Pos: entity.Vec2{X: 400}, Health: entity.Health{Current: 100, Max: 100}})
	e.Step(context.Background(), e.DT())

	snap := e.Snapshot()
	require.Len(t, snap.Bosses, 1)
	require.Len(t, snap.Visuals, 1)
	assert.Equal(t, mechanic.KindPermafrost, snap.Visuals[0].Kind)
	assert.Len(t, snap.Companions, 6)

	b.Health.Current = 1
	assert.Equal(t, 1000.0, snap.Bosses[0].Health.Current)
	_, err := json.Marshal(snap)
	assert.NoError(t, err)
}

func TestEncounter_Step_WritesSnapshotToCache(t *testing.T) {
	c, _ := testutil.SetupTestCache(t)
	e, _ := newTestEncounter(t, Config{Cache: c, SnapshotEvery: 3})
	addBoss(e, mechanic.TypeHive, 1000)
	ctx := context.Background()

	e.Step(ctx, e.DT())
	e.Step(ctx, e.DT())
	_, err := c.Get(ctx, cache.SnapshotKey(e.ID))
	assert.True(t, cache.IsNotFound(err))

	e.Step(ctx, e.DT())
	raw, err := c.Get(ctx, cache.SnapshotKey(e.ID))
	require.NoError(t, err)
	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))
	assert.Equal(t, int64(3), snap.Tick)
	assert.Equal(t, e.ID, snap.EncounterID)
}

func TestEncounter_Run_Stop(t *testing.T) {
	e, _ := newTestEncounter(t, Config{TickRate: 200})
	addBoss(e, mechanic.TypeGridWarden, 1000)

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	assert.Eventually(t, func() bool { return e.Snapshot().Tick > 2 }, time.Second, 5*time.Millisecond)
	e.Stop()
	e.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestEncounter_Run_ContextCancel(t *testing.T) {
	e, _ := newTestEncounter(t, Config{TickRate: 200})
	addBoss(e, mechanic.TypeNullpoint, 1000)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
