package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth_Damage_FloorsAtZero(t *testing.T) {
	h := Health{Current: 10, Max: 10}
	assert.True(t, h.Damage(25))
	assert.Equal(t, 0.0, h.Current)
}

func TestHealth_Heal_CapsAtMax(t *testing.T) {
	h := Health{Current: 5, Max: 10}
	h.Heal(100)
	assert.Equal(t, 10.0, h.Current)
	h.Heal(-3) // ignored
	assert.Equal(t, 10.0, h.Current)
}

func TestHealth_Ratio_ZeroMax(t *testing.T) {
	assert.Equal(t, 0.0, Health{Current: 5}.Ratio())
	assert.InDelta(t, 0.25, Health{Current: 25, Max: 100}.Ratio(), 1e-9)
}

func TestVec2_Norm_Zero(t *testing.T) {
	assert.Equal(t, Vec2{}, Vec2{}.Norm())
	assert.InDelta(t, 1.0, Vec2{3, 4}.Norm().Len(), 1e-9)
}

func TestStore_AddBoss_Defaults(t *testing.T) {
	s := NewStore()
	b := s.AddBoss(&Boss{Type: "nullpoint", Speed: 40})
	require.NotZero(t, b.ID)
	assert.Equal(t, 1, b.Phase)
	assert.Equal(t, 40.0, b.BaseSpeed)
	assert.Equal(t, 1.0, b.Alpha)
	assert.Same(t, b, s.Boss(b.ID))
}

func TestStore_Bosses_CreationOrderSnapshot(t *testing.T) {
	s := NewStore()
	a := s.AddBoss(&Boss{Type: "a"})
	b := s.AddBoss(&Boss{Type: "b"})
	snap := s.Bosses()
	s.AddBoss(&Boss{Type: "c"})
	require.Len(t, snap, 2)
	assert.Equal(t, a.ID, snap[0].ID)
	assert.Equal(t, b.ID, snap[1].ID)
	assert.Len(t, s.Bosses(), 3)
}

func TestStore_RemoveBoss_Absent(t *testing.T) {
	s := NewStore()
	assert.False(t, s.RemoveBoss(99))
}

func TestStore_Companions_AddRemove(t *testing.T) {
	s := NewStore()
	c := s.AddCompanion(&Companion{Kind: CompanionRod, HP: 10, MaxHP: 10})
	assert.Same(t, c, s.Companion(c.ID))
	assert.True(t, s.RemoveCompanion(c.ID))
	assert.Nil(t, s.Companion(c.ID))
	assert.False(t, s.RemoveCompanion(c.ID))
}

func TestStore_Projectiles_ConsumeAndPrune(t *testing.T) {
	s := NewStore()
	p1 := s.AddProjectile(&Projectile{Damage: 5})
	s.AddProjectile(&Projectile{Damage: 7})
	s.ConsumeProjectile(p1.ID)
	live := s.LiveProjectiles()
	require.Len(t, live, 1)
	assert.Equal(t, 7.0, live[0].Damage)
	assert.Equal(t, 1, s.PruneProjectiles())
	assert.Len(t, s.LiveProjectiles(), 1)
}

func TestEnemy_Marks(t *testing.T) {
	e := &Enemy{}
	assert.False(t, e.Has(MarkBuffed))
	e.Set(MarkBuffed)
	assert.True(t, e.Has(MarkBuffed))
	assert.False(t, e.Has(MarkCredited))
}
