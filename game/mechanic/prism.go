package mechanic

import "github.com/kasuganosora/bossarena/game/entity"

// Element is the prism's active damage element.
type Element int

const (
	ElementFire Element = iota
	ElementIce
	ElementLightning
	elementCount
)

func (e Element) String() string {
	switch e {
	case ElementFire:
		return "fire"
	case ElementIce:
		return "ice"
	case ElementLightning:
		return "lightning"
	}
	return "unknown"
}

var prismShiftIntervals = []float64{10, 8, 6, 6}

const (
	prismOverloadPhase = 4
	prismBurstRadius   = 150.0
	prismBurstScale3   = 1.2
	prismFireRadius    = 80.0
	prismFireRate      = 0.3
	prismIceRadius     = 120.0
	prismIceSlow       = 0.5 * 3 // velocity factor is 1 - prismIceSlow*dt
	prismLightningMul  = 1.8
	prismIceMul        = 0.7
)

type prismState struct {
	phase    phaseMirror
	element  Element
	shift    float64
	overload bool
	shifts   int
}

func (*prismState) Kind() Kind { return KindPrism }

// active reports whether e currently applies its effect.
func (s *prismState) active(e Element) bool {
	return s.overload || s.element == e
}

type prism struct{}

func (prism) newState(_ *Context, b *entity.Boss) State {
	return &prismState{phase: 1, shift: byPhase(prismShiftIntervals, b.Phase)}
}

func (prism) teardown(*Context, entity.ID, State) {}

func (prism) update(c *Context, b *entity.Boss, st State) Visual {
	s := st.(*prismState)
	if _, entered := s.phase.observe(b.Phase); entered && !s.overload {
		if b.Phase >= prismOverloadPhase {
			s.overload = true
			s.shift = 0
			c.Emit(b, KindPrism, EventOverload, nil)
		} else if iv := byPhase(prismShiftIntervals, b.Phase); s.shift > iv {
			s.shift = iv
		}
	}

	if !s.overload && countdown(&s.shift, c.DT) {
		s.element = (s.element + 1) % elementCount
		s.shift = byPhase(prismShiftIntervals, b.Phase)
		s.shifts++
		burst := false
		if b.Phase >= 2 && c.Player != nil && c.Player.Pos.Dist(b.Pos) <= prismBurstRadius {
			amount := b.Damage
			if b.Phase >= 3 {
				amount *= prismBurstScale3
			}
			c.hurtPlayer(amount)
			burst = true
		}
		c.Emit(b, KindPrism, EventElementShift, map[string]any{"element": s.element.String(), "burst": burst})
	}

	switch {
	case s.overload || s.element == ElementLightning:
		b.Speed = b.BaseSpeed * prismLightningMul
	case s.element == ElementIce:
		b.Speed = b.BaseSpeed * prismIceMul
	default:
		b.Speed = b.BaseSpeed
	}

	if p := c.Player; p != nil {
		d := p.Pos.Dist(b.Pos)
		if s.active(ElementFire) && d <= prismFireRadius {
			c.hurtPlayer(prismFireRate * b.Damage * c.DT)
		}
		if s.active(ElementIce) && d <= prismIceRadius {
			p.Vel = p.Vel.Scale(1 - prismIceSlow*c.DT)
		}
	}

	v := newVisual(b, KindPrism)
	if s.active(ElementFire) {
		v.circle(b.Pos, prismFireRadius, ColorFire, 0.25)
	}
	if s.active(ElementIce) {
		v.ring(b.Pos, prismIceRadius, 3, ColorIce, 0.5)
	}
	if s.active(ElementLightning) {
		v.ring(b.Pos, 40, 2, ColorLightning, 0.8)
	}
	return v
}
