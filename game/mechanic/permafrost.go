package mechanic

import (
	"math"

	"github.com/kasuganosora/bossarena/game/entity"
)

var icePatchIntervals = []float64{6, 4, 3, 2}

const (
	armCount       = 6
	armRadius      = 70.0
	armSpin        = 0.3 // rad/s
	armHP          = 40.0
	armHitRadius   = 16.0
	armRegenDelay  = 8.0
	safeZoneRadius = 60.0
	safeZoneLife   = 6.0
	icePatchCap    = 12
	icePatchJitter = 8.0
	slideDuration  = 0.5
	slideSpeed     = 180.0
)

func icePatchRadius(phase int) float64 { return 48 + 8*float64(phase) }

type safeZone struct {
	Pos  entity.Vec2
	Life float64
}

type icePatch struct {
	Pos    entity.Vec2
	Radius float64
}

type permafrostState struct {
	phase    phaseMirror
	arms     []*entity.Companion
	spin     float64
	regen    float64 // accumulated while any arm is dead
	zones    []safeZone
	patches  []icePatch
	patch    float64
	slide    float64
	slideDir entity.Vec2
}

func (*permafrostState) Kind() Kind { return KindPermafrost }

func (s *permafrostState) armPos(b *entity.Boss, slot int) entity.Vec2 {
	return b.Pos.Add(entity.Polar(s.spin+2*math.Pi*float64(slot)/armCount, armRadius))
}

func (s *permafrostState) inSafeZone(p entity.Vec2) bool {
	for _, z := range s.zones {
		if p.Dist(z.Pos) <= safeZoneRadius {
			return true
		}
	}
	return false
}

type permafrost struct{}

func (permafrost) newState(c *Context, b *entity.Boss) State {
	s := &permafrostState{phase: phaseMirror(b.Phase), patch: byPhase(icePatchIntervals, b.Phase)}
	s.arms = make([]*entity.Companion, armCount)
	for i := range armCount {
		s.arms[i] = c.spawnCompanion(b, KindPermafrost, entity.CompanionArm, i, s.armPos(b, i), armHP, armHitRadius)
	}
	return s
}

func (permafrost) teardown(c *Context, _ entity.ID, st State) {
	for _, a := range st.(*permafrostState).arms {
		c.destroyCompanion(a)
	}
}

func (permafrost) update(c *Context, b *entity.Boss, st State) Visual {
	s := st.(*permafrostState)
	if _, entered := s.phase.observe(b.Phase); entered {
		if iv := byPhase(icePatchIntervals, b.Phase); s.patch > iv {
			s.patch = iv
		}
	}

	s.spin = wrapAngle(s.spin + armSpin*c.DT)
	for i, a := range s.arms {
		a.Pos = s.armPos(b, i)
	}

	for _, a := range c.applyProjectileHits(b, KindPermafrost, s.arms) {
		c.destroyCompanion(a)
		s.zones = append(s.zones, safeZone{Pos: a.Pos, Life: safeZoneLife})
	}

	zones := s.zones[:0]
	for _, z := range s.zones {
		if !countdown(&z.Life, c.DT) {
			zones = append(zones, z)
		}
	}
	s.zones = zones

	dead := 0
	for _, a := range s.arms {
		if !a.Alive() {
			dead++
		}
	}
	if dead == 0 {
		s.regen = 0
	} else {
		s.regen += c.DT
		if s.regen >= armRegenDelay-timerEpsilon {
			for _, a := range s.arms {
				if !a.Alive() && !s.inSafeZone(a.Pos) {
					c.reviveCompanion(b, KindPermafrost, a, armHP)
					dead--
				}
			}
			if dead == 0 {
				s.regen = 0
			}
		}
	}

	if p := c.Player; p != nil {
		if countdown(&s.patch, c.DT) {
			at := p.Pos.Add(entity.Vec2{
				X: c.randRange(-icePatchJitter, icePatchJitter),
				Y: c.randRange(-icePatchJitter, icePatchJitter),
			})
			s.patches = append(s.patches, icePatch{Pos: at, Radius: icePatchRadius(b.Phase)})
			if len(s.patches) > icePatchCap {
				s.patches = s.patches[len(s.patches)-icePatchCap:]
			}
			s.patch = byPhase(icePatchIntervals, b.Phase)
			c.Emit(b, KindPermafrost, EventIcePatch, map[string]any{"x": at.X, "y": at.Y})
		}

		if s.slide > 0 {
			p.Vel = s.slideDir.Scale(slideSpeed)
			countdown(&s.slide, c.DT)
		} else if !s.inSafeZone(p.Pos) {
			for _, ip := range s.patches {
				if p.Pos.Dist(ip.Pos) > ip.Radius {
					continue
				}
				if dir := p.Vel.Norm(); dir != (entity.Vec2{}) {
					s.slideDir = dir
					s.slide = slideDuration
					p.Vel = dir.Scale(slideSpeed)
				}
				break
			}
		}
	}

	v := newVisual(b, KindPermafrost)
	for _, ip := range s.patches {
		v.circle(ip.Pos, ip.Radius, ColorIce, 0.3)
	}
	for _, z := range s.zones {
		v.circle(z.Pos, safeZoneRadius, ColorSafe, 0.25*z.Life/safeZoneLife+0.1)
	}
	for _, a := range s.arms {
		if a.Alive() {
			v.line(b.Pos, a.Pos, 3, ColorIce, 0.6)
			v.circle(a.Pos, armHitRadius, ColorIce, 0.9)
		}
	}
	return v
}
