package mechanic

import (
	"math"
	"testing"

	"github.com/kasuganosora/bossarena/game/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDamageCompanion_FloorsAtZero(t *testing.T) {
	comp := &entity.Companion{HP: 30, MaxHP: 40}

	assert.False(t, damageCompanion(comp, 10))
	assert.Equal(t, 20.0, comp.HP)

	assert.True(t, damageCompanion(comp, 500))
	assert.Equal(t, 0.0, comp.HP)
	assert.True(t, comp.Dead)
	assert.False(t, comp.Alive())

	assert.False(t, damageCompanion(comp, 10), "already dead")
	assert.Equal(t, 0.0, comp.HP)
}

func TestApplyProjectileHits_OneTargetPerShot(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypeTether, 1, 500)
	c := a.ctx(0.1)
	x := a.store.AddCompanion(&entity.Companion{Owner: b.ID, Pos: entity.Vec2{X: 10}, HP: 50, MaxHP: 50, HitRadius: 16})
	y := a.store.AddCompanion(&entity.Companion{Owner: b.ID, Pos: entity.Vec2{X: 12}, HP: 50, MaxHP: 50, HitRadius: 16})
	shot := a.store.AddProjectile(&entity.Projectile{Pos: entity.Vec2{X: 11}, Damage: 80, Radius: 2})

	killed := c.applyProjectileHits(b, KindTether, []*entity.Companion{x, y})

	assert.Equal(t, []*entity.Companion{x}, killed)
	assert.True(t, shot.Consumed)
	assert.Equal(t, 50.0, y.HP)
}

func TestTether_PlacesAnchorsAndBeams(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypeTether, 1, 500)
	p := a.player(0, 10)

	a.run(1, 0.1)

	anchors := a.companionsOf(b.ID)
	require.Len(t, anchors, 2)
	for _, an := range anchors {
		assert.InDelta(t, 140, an.Pos.Dist(b.Pos), 1e-9)
		assert.Equal(t, 80.0, an.MaxHP)
	}
	s := stateOf[*tetherState](a, b)
	assert.Len(t, s.beams(), 1)
	assert.InDelta(t, 100-tetherBeamRate*10, p.Health.Current, 1e-6)

	p.Pos = entity.Vec2{Y: 50}
	before := p.Health.Current
	a.run(1, 0.1)
	assert.Equal(t, before, p.Health.Current)
}

func TestTether_DeadAnchorBreaksBeam(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypeTether, 1, 500)
	p := a.player(0, 10)
	a.tick(0.1)
	s := stateOf[*tetherState](a, b)
	first := s.anchors[0]

	shot := a.store.AddProjectile(&entity.Projectile{Pos: first.Pos, Damage: 500, Radius: 2})
	a.tick(0.1)

	assert.True(t, shot.Consumed)
	assert.Equal(t, 0.0, first.HP)
	assert.True(t, first.Dead)
	assert.Nil(t, a.store.Companion(first.ID))
	assert.Empty(t, s.beams())
	assert.Equal(t, 1, a.count(EventCompanionDestroyed))

	before := p.Health.Current
	a.run(5, 0.1)
	assert.Equal(t, before, p.Health.Current)
	assert.False(t, first.Alive(), "no regen before phase 3")
}

func TestTether_RegenFromPhaseThree(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypeTether, 3, 500)
	a.tick(0.1)
	s := stateOf[*tetherState](a, b)
	require.Len(t, s.anchors, 4)
	first := s.anchors[0]
	a.store.AddProjectile(&entity.Projectile{Pos: first.Pos, Damage: 1000, Radius: 2})

	a.tick(0.1)
	require.False(t, first.Alive())

	a.run(9.8, 0.1)
	assert.False(t, first.Alive())

	a.run(0.2, 0.1)
	assert.True(t, first.Alive())
	assert.Equal(t, tetherHP(3), first.HP)
	assert.NotNil(t, a.store.Companion(first.ID))
	assert.Equal(t, 1, a.count(EventCompanionRevived))
}

func TestTether_PhaseEntryReplacesAnchors(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypeTether, 1, 500)
	a.tick(0.1)
	old := a.companionsOf(b.ID)
	require.Len(t, old, 2)

	b.Phase = 2
	a.tick(0.1)
	a.tick(0.1)

	now := a.companionsOf(b.ID)
	require.Len(t, now, 3)
	for _, o := range old {
		assert.Nil(t, a.store.Companion(o.ID))
	}
	assert.Equal(t, 5, a.count(EventCompanionSpawned), "entry action fires once")
}

func TestTether_PhaseFourNeverReplaces(t *testing.T) {
	a := newTestArena(t)
	a.boss(TypeTether, 4, 500)

	a.run(60, 0.1)
	assert.Equal(t, 4, a.count(EventCompanionSpawned))
}

func TestPermafrost_ArmsOrbit(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypePermafrost, 1, 500)

	a.run(1, 0.1)

	s := stateOf[*permafrostState](a, b)
	require.Len(t, s.arms, armCount)
	assert.InDelta(t, armSpin*1, s.spin, 1e-9)
	for i, arm := range s.arms {
		assert.InDelta(t, armRadius, arm.Pos.Dist(b.Pos), 1e-9)
		want := b.Pos.Add(entity.Polar(s.spin+2*math.Pi*float64(i)/armCount, armRadius))
		assert.InDelta(t, want.X, arm.Pos.X, 1e-9)
		assert.InDelta(t, want.Y, arm.Pos.Y, 1e-9)
	}
}

func TestPermafrost_DeadArmSafeZoneAndRegen(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypePermafrost, 1, 500)
	a.tick(0.1)
	s := stateOf[*permafrostState](a, b)
	arm := s.arms[0]
	a.store.AddProjectile(&entity.Projectile{Pos: arm.Pos, Damage: 100, Radius: 10})

	a.tick(0.1)
	require.False(t, arm.Alive())
	require.Len(t, s.zones, 1)
	assert.InDelta(t, safeZoneLife-0.1, s.zones[0].Life, 1e-9)

	a.run(7.8, 0.1)
	assert.False(t, arm.Alive())
	assert.Empty(t, s.zones, "zone expired after 6s")

	a.tick(0.1)
	assert.True(t, arm.Alive())
	assert.Equal(t, armHP, arm.HP)
	assert.Equal(t, 0.0, s.regen)
}

func TestPermafrost_SafeZoneBlocksRegen(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypePermafrost, 1, 500)
	a.tick(0.1)
	s := stateOf[*permafrostState](a, b)
	arm := s.arms[2]
	a.store.AddProjectile(&entity.Projectile{Pos: arm.Pos, Damage: 100, Radius: 10})
	a.tick(0.1)
	a.run(7.8, 0.1)
	require.False(t, arm.Alive())

	s.zones = []safeZone{{Pos: arm.Pos, Life: 5}}
	a.tick(0.1)
	assert.False(t, arm.Alive())
	assert.GreaterOrEqual(t, s.regen, armRegenDelay-timerEpsilon)

	s.zones = nil
	a.tick(0.1)
	assert.True(t, arm.Alive())
}

func TestPermafrost_IcePatchTriggersSlide(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypePermafrost, 1, 500)
	p := a.player(300, 0)
	p.Vel = entity.Vec2{X: 10}

	a.run(6, 0.1)

	s := stateOf[*permafrostState](a, b)
	require.Len(t, s.patches, 1)
	assert.Equal(t, icePatchRadius(1), s.patches[0].Radius)
	assert.Greater(t, s.slide, 0.0)
	assert.InDelta(t, slideSpeed, p.Vel.X, 1e-9)
	assert.InDelta(t, 0, p.Vel.Y, 1e-9)
}

func TestPermafrost_NoSlideInSafeZoneOrStanding(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypePermafrost, 1, 500)
	p := a.player(300, 0)
	a.tick(0.1)
	s := stateOf[*permafrostState](a, b)

	s.patches = []icePatch{{Pos: p.Pos, Radius: 56}}
	a.tick(0.1)
	assert.Equal(t, 0.0, s.slide, "standing still")

	p.Vel = entity.Vec2{Y: 20}
	s.zones = []safeZone{{Pos: p.Pos, Life: 5}}
	a.tick(0.1)
	assert.Equal(t, 0.0, s.slide)
	assert.Equal(t, 20.0, p.Vel.Y)

	s.zones = nil
	a.tick(0.1)
	assert.Greater(t, s.slide, 0.0)
	assert.InDelta(t, slideSpeed, p.Vel.Y, 1e-9)
}

func TestPermafrost_PatchCap(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypePermafrost, 4, 500)
	a.player(300, 0)

	a.run(40, 0.1)

	s := stateOf[*permafrostState](a, b)
	assert.Len(t, s.patches, icePatchCap)
	assert.Greater(t, a.count(EventIcePatch), icePatchCap)
}

func TestArcTyrant_ScenarioFirstBatchAndPulse(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypeArcTyrant, 1, 500)

	a.run(8.1, 0.1)

	s := stateOf[*arcTyrantState](a, b)
	assert.Equal(t, 1, s.batches)
	require.Len(t, s.rods, 1)
	assert.GreaterOrEqual(t, s.pulses, 1)
	assert.Equal(t, []entity.ID{s.rods[0].ID}, s.lastChain)
	assert.Len(t, s.beams, 1)
	d := s.rods[0].Pos.Dist(b.Pos)
	assert.True(t, d >= rodMinRadius && d <= rodMaxRadius)
	assert.Equal(t, rodHP(1), s.rods[0].HP)
}

func TestArcTyrant_RodCap(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypeArcTyrant, 2, 500)

	a.run(120, 0.1)

	s := stateOf[*arcTyrantState](a, b)
	assert.Len(t, s.rods, 6)
	assert.Len(t, a.companionsOf(b.ID), 6)
}

func addRods(a *testArena, b *entity.Boss, s *arcTyrantState, n int) {
	for i := range n {
		pos := b.Pos.Add(entity.Polar(float64(i)*1.3, 100+20*float64(i)))
		s.rods = append(s.rods, a.store.AddCompanion(&entity.Companion{
			Owner: b.ID, Kind: entity.CompanionRod, Slot: i, Pos: pos, HP: 100, MaxHP: 100, HitRadius: rodHitRadius,
		}))
	}
}

func TestArcTyrant_ChainVisitsEachRodOnce(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypeArcTyrant, 3, 500)
	a.tick(0.1)
	s := stateOf[*arcTyrantState](a, b)
	addRods(a, b, s, 5)
	s.rods[3].Dead = true

	arcTyrant{}.chain(a.ctx(0.1), b, s)

	assert.Len(t, s.lastChain, 4)
	seen := map[entity.ID]bool{}
	for _, id := range s.lastChain {
		assert.False(t, seen[id], "rod %d visited twice", id)
		assert.NotEqual(t, s.rods[3].ID, id)
		seen[id] = true
	}
}

func TestArcTyrant_ChainHopLimit(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypeArcTyrant, 1, 500)
	a.tick(0.1)
	s := stateOf[*arcTyrantState](a, b)
	addRods(a, b, s, 5)

	arcTyrant{}.chain(a.ctx(0.1), b, s)
	assert.Len(t, s.lastChain, 3)
}

func TestArcTyrant_ChainDoubleBounce(t *testing.T) {
	a := newTestArenaWith(t, Config{DoubleBounce: true})
	b := a.boss(TypeArcTyrant, 3, 500)
	a.tick(0.1)
	s := stateOf[*arcTyrantState](a, b)
	addRods(a, b, s, 5)

	arcTyrant{}.chain(a.ctx(0.1), b, s)

	assert.GreaterOrEqual(t, len(s.lastChain), 5)
	assert.LessOrEqual(t, len(s.lastChain), 10)
	visits := map[entity.ID]int{}
	for i, id := range s.lastChain {
		visits[id]++
		assert.LessOrEqual(t, visits[id], 2)
		if i > 0 {
			assert.NotEqual(t, s.lastChain[i-1], id, "no immediate bounce back")
		}
	}
}

func TestArcTyrant_StormCageGap(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypeArcTyrant, 3, 500)
	p := a.player(1000, 0)
	a.tick(0.1)
	s := stateOf[*arcTyrantState](a, b)
	s.place = 1000

	a.run(11.9, 0.1)
	require.True(t, s.storm.Active)
	assert.Equal(t, 1, a.count(EventStormCage))

	a.run(3, 0.1)
	want := wrapAngle(s.storm.GapStart + stormGapSpeed*s.storm.Elapsed)
	assert.InDelta(t, 0, normalizeAngle(s.storm.Gap-want), 1e-9)
	assert.InDelta(t, 3, s.storm.Elapsed, 1e-9)

	before := p.Health.Current
	for range 10 {
		p.Pos = b.Pos.Add(entity.Polar(s.storm.Gap+stormGapSpeed*0.1, stormRadius+stormBand))
		a.tick(0.1)
	}
	assert.Equal(t, before, p.Health.Current, "gap center is safe across the band")

	p.Pos = b.Pos.Add(entity.Polar(s.storm.Gap+math.Pi, stormRadius))
	a.tick(0.1)
	assert.InDelta(t, before-stormRate*10*0.1, p.Health.Current, 1e-9)
}

func TestArcTyrant_StormCageEnds(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypeArcTyrant, 3, 500)
	a.run(12, 0.1)
	s := stateOf[*arcTyrantState](a, b)
	require.True(t, s.storm.Active)

	a.run(6, 0.1)
	assert.False(t, s.storm.Active)
	assert.InDelta(t, stormCooldown, s.storm.Cooldown, 1e-9)
}

func TestArcTyrant_NoStormBeforePhaseThree(t *testing.T) {
	a := newTestArena(t)
	a.boss(TypeArcTyrant, 2, 500)
	a.run(30, 0.1)
	assert.Equal(t, 0, a.count(EventStormCage))
}
