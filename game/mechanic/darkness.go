package mechanic

import (
	"math"

	"github.com/kasuganosora/bossarena/game/entity"
)

var darkTargets = []float64{1.0, 0.75, 0.6, 0.4, 0.1}

const (
	lightMax          = 300.0
	lightEase         = 2.0
	lightShrinkStep   = 0.05 * lightMax
	lightShrinkPeriod = 15.0
	lightPickupEvery  = 12.0
	lightPickupFast   = 6.0 // phase 5+
	lightPickupSpread = 150.0
	lightPickupCap    = 4
	lightPickupReach  = 30.0
	lightPickupGain   = 40.0
	darkDangerRadius  = 50.0
	darkDamageRate    = 0.03
	hiddenAlpha       = 0.15
)

type darknessState struct {
	phase   phaseMirror
	light   float64 // eased radius before passive shrink
	elapsed float64
	pickup  float64
	pickups []entity.Vec2
}

func (*darknessState) Kind() Kind { return KindDarkness }

// radius is the effective visibility radius after the cumulative shrink.
func (s *darknessState) radius() float64 {
	shrink := math.Floor(s.elapsed/lightShrinkPeriod) * lightShrinkStep
	return math.Max(0, s.light-shrink)
}

type darkness struct{}

func (darkness) newState(_ *Context, b *entity.Boss) State {
	return &darknessState{phase: phaseMirror(b.Phase), light: lightMax, pickup: lightPickupEvery}
}

func (darkness) teardown(*Context, entity.ID, State) {}

func (darkness) update(c *Context, b *entity.Boss, st State) Visual {
	s := st.(*darknessState)
	s.phase.observe(b.Phase)
	s.elapsed += c.DT

	target := byPhase(darkTargets, b.Phase) * lightMax
	s.light += (target - s.light) * math.Min(1, lightEase*c.DT)

	if countdown(&s.pickup, c.DT) {
		if len(s.pickups) < lightPickupCap {
			off := entity.Polar(c.RNG.Float64()*2*math.Pi, c.RNG.Float64()*lightPickupSpread)
			s.pickups = append(s.pickups, b.Pos.Add(off))
		}
		s.pickup = lightPickupEvery
		if b.Phase >= 5 {
			s.pickup = lightPickupFast
		}
	}

	v := newVisual(b, KindDarkness)
	p := c.Player
	if p == nil {
		for _, at := range s.pickups {
			v.circle(at, 8, ColorLight, 0.9)
		}
		return v
	}

	kept := s.pickups[:0]
	for _, at := range s.pickups {
		if at.Dist(p.Pos) <= lightPickupReach {
			s.light = math.Min(lightMax, s.light+lightPickupGain)
			c.Emit(b, KindDarkness, EventLightPickup, map[string]any{"light": s.light})
			continue
		}
		kept = append(kept, at)
	}
	s.pickups = kept

	eff := s.radius()
	if eff < darkDangerRadius {
		c.hurtPlayer(p.Health.Max * darkDamageRate * c.DT * (1 - eff/darkDangerRadius))
	}

	b.Alpha = hiddenAlpha
	if b.Pos.Dist(p.Pos) < eff {
		b.Alpha = 1
	}
	v.BossAlpha = b.Alpha

	v.ring(p.Pos, eff, 2, ColorLight, 0.5)
	for _, at := range s.pickups {
		v.circle(at, 8, ColorLight, 0.9)
	}
	return v
}
