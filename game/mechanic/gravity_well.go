package mechanic

import (
	"github.com/kasuganosora/bossarena/game/entity"
)

var wellPull = []float64{0.15, 0.25, 0.5}

const (
	wellAccel         = 45.0 // px/s² at strength 1
	wellSurgeCooldown = 10.0
	wellSurgeDuration = 2.0
	wellSurgeFactor   = 3.0
	wellTowardBonus   = 0.1
	wellAwayPenalty   = 0.15
	wellContactRadius = 48.0
	wellContactRate   = 0.8
)

type gravityWellState struct {
	phase phaseMirror
	surge float64 // remaining surge time; 0 when idle
	next  float64 // cooldown to the next surge
}

func (*gravityWellState) Kind() Kind { return KindGravityWell }

// strength is the current pull multiplier.
func (s *gravityWellState) strength(phase int) float64 {
	k := byPhase(wellPull, phase)
	if s.surge > 0 {
		k *= wellSurgeFactor
	}
	return k
}

type gravityWell struct{}

func (gravityWell) newState(_ *Context, b *entity.Boss) State {
	return &gravityWellState{phase: phaseMirror(b.Phase), next: wellSurgeCooldown}
}

func (gravityWell) teardown(*Context, entity.ID, State) {}

func (gravityWell) update(c *Context, b *entity.Boss, st State) Visual {
	s := st.(*gravityWellState)
	s.phase.observe(b.Phase)

	b.Speed = 0
	b.Vel = entity.Vec2{}

	if b.Phase >= 2 {
		if s.surge > 0 {
			countdown(&s.surge, c.DT)
		} else if countdown(&s.next, c.DT) {
			s.surge = wellSurgeDuration
			s.next = wellSurgeCooldown
			c.Emit(b, KindGravityWell, EventSurge, map[string]any{"duration": wellSurgeDuration})
		}
	}

	v := newVisual(b, KindGravityWell)
	strength := s.strength(b.Phase)
	alpha := 0.25 + 0.5*strength
	if alpha > 1 {
		alpha = 1
	}
	v.ring(b.Pos, wellContactRadius, 3, ColorGravity, alpha)
	v.ring(b.Pos, wellContactRadius*4, 1, ColorGravity, alpha*0.4)

	p := c.Player
	if p == nil {
		return v
	}
	toBoss := b.Pos.Sub(p.Pos)
	dist := toBoss.Len()
	if dist > 0 {
		dir := toBoss.Scale(1 / dist)
		// Movement toward the well is eased, movement away is resisted.
		radial := p.Vel.Dot(dir)
		switch {
		case radial > 0:
			p.Vel = p.Vel.Add(dir.Scale(wellTowardBonus * radial * c.DT))
		case radial < 0:
			p.Vel = p.Vel.Add(dir.Scale(-wellAwayPenalty * radial * c.DT))
		}
		p.Vel = p.Vel.Add(dir.Scale(wellAccel * strength * c.DT))
	}
	if dist <= wellContactRadius {
		c.hurtPlayer(wellContactRate * b.Damage * c.DT)
	}
	return v
}
