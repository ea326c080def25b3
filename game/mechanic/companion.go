package mechanic

import (
	"math"

	"github.com/kasuganosora/bossarena/game/entity"
)

// spawnCompanion creates a destructible companion owned by b and registers
// it in the shared store so the collision collaborator can see it.
func (c *Context) spawnCompanion(b *entity.Boss, k Kind, kind entity.CompanionKind, slot int, pos entity.Vec2, hp, hitRadius float64) *entity.Companion {
	comp := c.Store.AddCompanion(&entity.Companion{
		Owner:     b.ID,
		Kind:      kind,
		Slot:      slot,
		Pos:       pos,
		HP:        hp,
		MaxHP:     hp,
		HitRadius: hitRadius,
	})
	c.Emit(b, k, EventCompanionSpawned, map[string]any{"companion": int64(comp.ID), "kind": string(kind), "slot": slot})
	return comp
}

// destroyCompanion removes comp from the shared store. Safe to call twice.
func (c *Context) destroyCompanion(comp *entity.Companion) {
	if comp == nil {
		return
	}
	comp.Dead = true
	comp.HP = 0
	c.Store.RemoveCompanion(comp.ID)
}

// reviveCompanion restores a dead companion at full health.
func (c *Context) reviveCompanion(b *entity.Boss, k Kind, comp *entity.Companion, hp float64) {
	comp.HP, comp.MaxHP = hp, hp
	comp.Dead = false
	comp.Regen = 0
	if c.Store.Companion(comp.ID) == nil {
		c.Store.AddCompanion(comp)
	}
	c.Emit(b, k, EventCompanionRevived, map[string]any{"companion": int64(comp.ID), "kind": string(comp.Kind)})
}

// damageCompanion applies amount to comp. HP never goes below 0; a
// companion at 0 HP is dead. Returns true when this hit killed it.
func damageCompanion(comp *entity.Companion, amount float64) bool {
	if !comp.Alive() || amount <= 0 {
		return false
	}
	comp.HP = math.Max(0, comp.HP-amount)
	if comp.HP <= 0 {
		comp.HP = 0
		comp.Dead = true
		return true
	}
	return false
}

// applyProjectileHits resolves live projectiles against comps. Each shot
// damages at most one companion and is consumed on hit. Companions killed
// here are excluded from later checks in the same pass and returned.
func (c *Context) applyProjectileHits(b *entity.Boss, k Kind, comps []*entity.Companion) []*entity.Companion {
	if c.Shots == nil {
		return nil
	}
	var killed []*entity.Companion
	for _, p := range c.Shots.LiveProjectiles() {
		for _, comp := range comps {
			if !comp.Alive() {
				continue
			}
			if p.Pos.Dist(comp.Pos) > comp.HitRadius+p.Radius {
				continue
			}
			c.Shots.ConsumeProjectile(p.ID)
			if damageCompanion(comp, p.Damage) {
				killed = append(killed, comp)
				c.Emit(b, k, EventCompanionDestroyed, map[string]any{"companion": int64(comp.ID), "kind": string(comp.Kind)})
			}
			break
		}
	}
	return killed
}

// liveCompanions filters comps down to the ones still alive.
func liveCompanions(comps []*entity.Companion) []*entity.Companion {
	out := make([]*entity.Companion, 0, len(comps))
	for _, comp := range comps {
		if comp.Alive() {
			out = append(out, comp)
		}
	}
	return out
}

// spawnCopy registers a split copy of parent as a boss-like entity.
func (c *Context) spawnCopy(parent *entity.Boss, pos entity.Vec2, health float64) *entity.Boss {
	return c.Store.AddBoss(&entity.Boss{
		Type:      TypeRecursionCopy,
		Phase:     parent.Phase,
		Pos:       pos,
		Speed:     parent.Speed,
		BaseSpeed: parent.BaseSpeed,
		Health:    entity.Health{Current: health, Max: health},
		Damage:    parent.Damage,
		Parent:    parent.ID,
	})
}

// removeCopy kills a split copy and drops it from the store.
func (c *Context) removeCopy(cp *entity.Boss) {
	cp.Health.Current = 0
	cp.Dead = true
	c.Store.RemoveBoss(cp.ID)
}

func copyAlive(cp *entity.Boss) bool {
	return !cp.Dead && cp.Health.Current > 0
}
