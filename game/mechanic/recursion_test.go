package mechanic

import (
	"testing"

	"github.com/kasuganosora/bossarena/game/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// enterPhase bumps the boss phase and runs the tick that observes it.
func enterPhase(a *testArena, b *entity.Boss, phase int) {
	b.Phase = phase
	a.tick(0.1)
}

func TestRecursion_ScenarioSplitHalves(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypeRecursion, 1, 1000)
	a.tick(0.1)

	enterPhase(a, b, 2)

	copies := a.copiesOf(b.ID)
	require.Len(t, copies, 1)
	assert.InDelta(t, 500, b.Health.Current, 1)
	assert.InDelta(t, 500, copies[0].Health.Current, 1)
	assert.Equal(t, TypeRecursionCopy, copies[0].Type)
	assert.InDelta(t, splitRadius, copies[0].Pos.Dist(b.Pos), 1e-9)
	assert.Equal(t, 1, a.count(EventSplit))
}

func TestRecursion_SplitConservesHealth(t *testing.T) {
	for _, h := range []float64{1, 3, 333.3, 999, 1000, 12345.6} {
		a := newTestArena(t)
		b := a.boss(TypeRecursion, 1, 20000)
		b.Health.Current = h
		a.tick(0.1)

		enterPhase(a, b, 2)

		total := b.Health.Current
		for _, cp := range a.copiesOf(b.ID) {
			total += cp.Health.Current
		}
		assert.InDelta(t, h, total, 1, "health %v", h)
	}
}

func TestRecursion_SecondSplitUsesPooledHealth(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypeRecursion, 1, 1000)
	a.tick(0.1)
	enterPhase(a, b, 2)
	first := a.copiesOf(b.ID)[0]
	first.Health.Current = 300
	b.Health.Current = 401

	enterPhase(a, b, 3)

	assert.Nil(t, a.store.Boss(first.ID))
	copies := a.copiesOf(b.ID)
	require.Len(t, copies, 2)
	total := b.Health.Current + copies[0].Health.Current + copies[1].Health.Current
	assert.InDelta(t, 701, total, 1e-9)
	assert.InDelta(t, 350, b.Health.Current, 1e-9)
	assert.Equal(t, 3, stateOf[*recursionState](a, b).splitCount)
}

func TestRecursion_MergeFoldsCopiesBack(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypeRecursion, 1, 1000)
	a.tick(0.1)
	enterPhase(a, b, 2)
	enterPhase(a, b, 3)
	copies := a.copiesOf(b.ID)
	require.Len(t, copies, 2)
	copies[0].Health.Current = 120
	copies[1].Health.Current = 80
	b.Health.Current = 100

	enterPhase(a, b, 4)

	assert.InDelta(t, 300, b.Health.Current, 1e-9)
	assert.Empty(t, a.copiesOf(b.ID))
	for _, cp := range copies {
		assert.True(t, cp.Dead)
	}
	s := stateOf[*recursionState](a, b)
	assert.True(t, s.merged)

	a.run(20, 0.1)
	assert.Equal(t, 1, a.count(EventMerge))
	assert.Equal(t, 0, a.count(EventSplitFailed))
}

func TestRecursion_KillingAllCopiesClearsWindow(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypeRecursion, 1, 1000)
	a.tick(0.1)
	enterPhase(a, b, 2)
	enterPhase(a, b, 3)
	copies := a.copiesOf(b.ID)

	copies[0].Dead = true
	a.tick(0.1)
	s := stateOf[*recursionState](a, b)
	assert.True(t, s.windowOpen)

	copies[1].Health.Current = 0
	a.tick(0.1)
	assert.False(t, s.windowOpen)
	assert.Empty(t, s.copies)
	assert.Empty(t, a.copiesOf(b.ID))

	a.run(10, 0.1)
	assert.Equal(t, 0, a.count(EventSplitFailed))
	assert.Equal(t, 0, b.Enrage)
}

func TestRecursion_FailedSplitAppliesPenaltyOnce(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypeRecursion, 1, 1000)
	a.tick(0.1)
	enterPhase(a, b, 2)
	enterPhase(a, b, 3)
	copies := a.copiesOf(b.ID)
	require.Len(t, copies, 2)

	copies[0].Dead = true
	b.Health.Current = 100
	a.tick(0.1)
	s := stateOf[*recursionState](a, b)
	require.True(t, s.windowOpen)

	a.run(killWindow, 0.1)

	assert.Equal(t, 1, a.count(EventSplitFailed))
	assert.InDelta(t, 350, b.Health.Current, 1e-9)
	assert.InDelta(t, 11.5, b.Damage, 1e-9)
	assert.InDelta(t, 66, b.Speed, 1e-9)
	assert.InDelta(t, 66, b.BaseSpeed, 1e-9)
	assert.Equal(t, 1, b.Enrage)
	assert.Equal(t, 1, s.splitCount)
	assert.Empty(t, a.copiesOf(b.ID))
	assert.Empty(t, s.copies)

	a.run(20, 0.1)
	assert.Equal(t, 1, a.count(EventSplitFailed))
	assert.Equal(t, 1, b.Enrage)
}

func TestRecursion_TeardownRemovesCopies(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypeRecursion, 1, 1000)
	a.tick(0.1)
	enterPhase(a, b, 2)
	require.Len(t, a.copiesOf(b.ID), 1)

	b.Dead = true
	a.tick(0.1)

	assert.Empty(t, a.copiesOf(b.ID))
	assert.False(t, a.engine.Registry().Has(b.ID))
}

func TestRecursion_LinksDrawnToLiveCopies(t *testing.T) {
	a := newTestArena(t)
	b := a.boss(TypeRecursion, 1, 1000)
	a.tick(0.1)
	enterPhase(a, b, 2)
	enterPhase(a, b, 3)

	f := a.tick(0.1)
	require.Len(t, f.Visuals, 1)
	lines := 0
	for _, sh := range f.Visuals[0].Shapes {
		if sh.Shape == ShapeLine {
			lines++
		}
	}
	assert.Equal(t, 2, lines)
}
