package mechanic

import (
	"math"

	"github.com/kasuganosora/bossarena/game/entity"
)

var (
	heatRates     = []float64{1, 1.5, 2, 2.5}
	ventCooldowns = []float64{18, 15, 12, 10}
)

const (
	heatFillRate      = 1.0 / 30.0
	heatRingThreshold = 0.6
	heatRingCost      = 0.3
	heatRingLife      = 4.0
	heatRingBand      = 24.0
	heatRingRate      = 0.4
	ventDuration      = 2.0
	ventRadius        = 100.0
	ventBurst         = 1.8
)

type heatRing struct {
	Center    entity.Vec2
	Radius    float64
	Speed     float64
	MaxRadius float64
	Life      float64
}

type heatCycleState struct {
	phase      phaseMirror
	gauge      float64
	rings      []heatRing
	vent       float64 // channel time left; 0 when not venting
	ventNext   float64
	savedSpeed float64
	savedBase  float64
}

func (*heatCycleState) Kind() Kind { return KindHeatCycle }

type heatCycle struct{}

func (heatCycle) newState(_ *Context, b *entity.Boss) State {
	return &heatCycleState{phase: phaseMirror(b.Phase), ventNext: byPhase(ventCooldowns, b.Phase)}
}

func (heatCycle) teardown(*Context, entity.ID, State) {}

func (h heatCycle) update(c *Context, b *entity.Boss, st State) Visual {
	s := st.(*heatCycleState)
	if _, entered := s.phase.observe(b.Phase); entered {
		if cd := byPhase(ventCooldowns, b.Phase); s.ventNext > cd {
			s.ventNext = cd
		}
	}
	p := float64(b.Phase)

	s.gauge += heatFillRate * byPhase(heatRates, b.Phase) * c.DT
	if s.gauge >= heatRingThreshold {
		s.gauge -= heatRingCost
		s.rings = append(s.rings, heatRing{
			Center:    b.Pos,
			Speed:     80 + 10*p,
			MaxRadius: 280 + 30*p,
			Life:      heatRingLife,
		})
		c.Emit(b, KindHeatCycle, EventHeatRing, map[string]any{"gauge": s.gauge})
	}

	if s.vent > 0 {
		b.Speed = 0
		if countdown(&s.vent, c.DT) {
			h.finishVent(c, b, s)
		}
	} else if countdown(&s.ventNext, c.DT) {
		s.vent = ventDuration
		s.savedSpeed, s.savedBase = b.Speed, b.BaseSpeed
		b.Speed = 0
		c.Emit(b, KindHeatCycle, EventVentStart, nil)
	}

	kept := s.rings[:0]
	for _, r := range s.rings {
		if countdown(&r.Life, c.DT) {
			continue
		}
		r.Radius = math.Min(r.MaxRadius, r.Radius+r.Speed*c.DT)
		if c.Player != nil && math.Abs(c.Player.Pos.Dist(r.Center)-r.Radius) <= heatRingBand {
			c.hurtPlayer(heatRingRate * b.Damage * c.DT)
		}
		kept = append(kept, r)
	}
	s.rings = kept

	v := newVisual(b, KindHeatCycle)
	v.ring(b.Pos, 30, 4, ColorHeat, clamp(s.gauge/heatRingThreshold, 0.1, 1))
	for _, r := range s.rings {
		v.ring(r.Center, r.Radius, 2*heatRingBand, ColorHeat, clamp(r.Life/heatRingLife, 0.2, 0.8))
	}
	if s.vent > 0 {
		v.circle(b.Pos, ventRadius, ColorWarning, 0.25+0.5*(1-s.vent/ventDuration))
	}
	return v
}

func (heatCycle) finishVent(c *Context, b *entity.Boss, s *heatCycleState) {
	// Phase boosts taken while venting scale BaseSpeed; carry them over.
	b.Speed = s.savedSpeed
	if s.savedBase > 0 {
		b.Speed *= b.BaseSpeed / s.savedBase
	}
	s.gauge = 0
	s.rings = s.rings[:0]
	s.ventNext = byPhase(ventCooldowns, b.Phase)
	hit := false
	if pl := c.Player; pl != nil {
		away := pl.Pos.Sub(b.Pos)
		if away.Len() <= ventRadius {
			hit = true
			dir := away.Norm()
			if dir == (entity.Vec2{}) {
				dir = entity.Vec2{X: 1}
			}
			pl.Vel = pl.Vel.Add(dir.Scale(250 + 40*float64(b.Phase)))
			c.hurtPlayer(ventBurst * b.Damage)
		}
	}
	c.Emit(b, KindHeatCycle, EventVent, map[string]any{"hit": hit})
}
