package mechanic

import (
	"math"

	"github.com/kasuganosora/bossarena/game/entity"
)

var (
	tetherCounts   = []int{2, 3, 4, 4}
	tetherReplaces = []float64{12, 10, 15, math.Inf(1)}
)

const (
	tetherRegen      = 10.0
	tetherRegenPhase = 3
	tetherBeamRadius = 20.0
	tetherBeamRate   = 0.5
	tetherHitRadius  = 18.0
)

func tetherRing(phase int) float64 { return 120 + 20*float64(phase) }
func tetherHP(phase int) float64   { return 60 + 20*float64(phase) }

type tetherState struct {
	phase   phaseMirror
	anchors []*entity.Companion // indexed by slot
	replace float64
}

func (*tetherState) Kind() Kind { return KindTether }

// beams returns the segments joining adjacent live anchors in cyclic slot
// order. Two live anchors form a single beam; fewer form none.
func (s *tetherState) beams() [][2]entity.Vec2 {
	live := liveCompanions(s.anchors)
	switch {
	case len(live) < 2:
		return nil
	case len(live) == 2:
		return [][2]entity.Vec2{{live[0].Pos, live[1].Pos}}
	}
	out := make([][2]entity.Vec2, 0, len(live))
	for i, a := range live {
		out = append(out, [2]entity.Vec2{a.Pos, live[(i+1)%len(live)].Pos})
	}
	return out
}

type tether struct{}

func (t tether) newState(c *Context, b *entity.Boss) State {
	s := &tetherState{phase: phaseMirror(b.Phase)}
	t.place(c, b, s)
	return s
}

func (tether) teardown(c *Context, _ entity.ID, st State) {
	for _, a := range st.(*tetherState).anchors {
		c.destroyCompanion(a)
	}
}

// place replaces every anchor with a fresh ring sized for the current phase.
func (tether) place(c *Context, b *entity.Boss, s *tetherState) {
	for _, a := range s.anchors {
		c.destroyCompanion(a)
	}
	n := byPhase(tetherCounts, b.Phase)
	r := tetherRing(b.Phase)
	hp := tetherHP(b.Phase)
	s.anchors = make([]*entity.Companion, n)
	for i := range n {
		pos := b.Pos.Add(entity.Polar(2*math.Pi*float64(i)/float64(n), r))
		s.anchors[i] = c.spawnCompanion(b, KindTether, entity.CompanionAnchor, i, pos, hp, tetherHitRadius)
	}
	s.replace = byPhase(tetherReplaces, b.Phase)
}

func (t tether) update(c *Context, b *entity.Boss, st State) Visual {
	s := st.(*tetherState)
	if _, entered := s.phase.observe(b.Phase); entered {
		t.place(c, b, s)
	} else if !math.IsInf(s.replace, 1) && countdown(&s.replace, c.DT) {
		t.place(c, b, s)
	}

	for _, a := range c.applyProjectileHits(b, KindTether, s.anchors) {
		c.destroyCompanion(a)
		if b.Phase >= tetherRegenPhase {
			a.Regen = tetherRegen
		}
	}
	for _, a := range s.anchors {
		if !a.Alive() && countdown(&a.Regen, c.DT) {
			c.reviveCompanion(b, KindTether, a, tetherHP(b.Phase))
		}
	}

	beams := s.beams()
	if p := c.Player; p != nil {
		for _, seg := range beams {
			if segmentDistance(p.Pos, seg[0], seg[1]) <= tetherBeamRadius {
				c.hurtPlayer(tetherBeamRate * b.Damage * c.DT)
				break
			}
		}
	}

	v := newVisual(b, KindTether)
	for _, seg := range beams {
		v.line(seg[0], seg[1], 4, ColorBeam, 0.8)
	}
	for _, a := range s.anchors {
		if a.Alive() {
			v.circle(a.Pos, tetherHitRadius, ColorAnchor, clamp(a.HP/a.MaxHP, 0.3, 1))
		}
	}
	return v
}
