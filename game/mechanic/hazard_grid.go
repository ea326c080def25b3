package mechanic

import (
	"math"

	"github.com/kasuganosora/bossarena/game/entity"
)

var (
	gridIntervals  = []float64{8, 6, 5}
	gridLineCounts = []int{3, 5, 7}
)

const (
	gridSpread         = 300.0
	gridWarn           = 1.0
	gridLethal         = 2.0
	gridSecondWave     = 4
	gridSecondWarn     = 1.0 // extra warning for the phase 3 follow-up wave
	gridHalfWidth      = 16.0
	gridDamageRate     = 0.6
	gridDrawHalfLength = 400.0
)

// hazardLine is an axis-aligned lethal strip. Horizontal lines sit at
// y = Offset, vertical ones at x = Offset.
type hazardLine struct {
	Horizontal bool
	Offset     float64
	Center     float64 // coordinate along the line, for drawing
	Warn       float64
	Remaining  float64
}

func (l hazardLine) covers(p entity.Vec2) bool {
	if l.Horizontal {
		return math.Abs(p.Y-l.Offset) <= gridHalfWidth
	}
	return math.Abs(p.X-l.Offset) <= gridHalfWidth
}

type hazardGridState struct {
	phase    phaseMirror
	cooldown float64
	lines    []hazardLine
	waves    int
}

func (*hazardGridState) Kind() Kind { return KindHazardGrid }

type hazardGrid struct{}

func (hazardGrid) newState(_ *Context, b *entity.Boss) State {
	return &hazardGridState{phase: 1, cooldown: byPhase(gridIntervals, b.Phase)}
}

func (hazardGrid) teardown(*Context, entity.ID, State) {}

func (g hazardGrid) update(c *Context, b *entity.Boss, st State) Visual {
	s := st.(*hazardGridState)
	if _, entered := s.phase.observe(b.Phase); entered {
		if iv := byPhase(gridIntervals, b.Phase); s.cooldown > iv {
			s.cooldown = iv
		}
	}

	if countdown(&s.cooldown, c.DT) {
		g.spawnWave(c, b, s)
		s.cooldown = byPhase(gridIntervals, b.Phase)
	}

	kept := s.lines[:0]
	for _, l := range s.lines {
		if l.Warn > 0 {
			countdown(&l.Warn, c.DT)
			kept = append(kept, l)
			continue
		}
		if countdown(&l.Remaining, c.DT) {
			continue
		}
		kept = append(kept, l)
		if c.Player != nil && l.covers(c.Player.Pos) {
			c.hurtPlayer(gridDamageRate * b.Damage * c.DT)
		}
	}
	s.lines = kept

	v := newVisual(b, KindHazardGrid)
	for _, l := range s.lines {
		col, alpha := ColorHazard, 0.8
		if l.Warn > 0 {
			col, alpha = ColorWarning, 0.3
		}
		if l.Horizontal {
			v.line(entity.Vec2{X: l.Center - gridDrawHalfLength, Y: l.Offset},
				entity.Vec2{X: l.Center + gridDrawHalfLength, Y: l.Offset}, 2*gridHalfWidth, col, alpha)
		} else {
			v.line(entity.Vec2{X: l.Offset, Y: l.Center - gridDrawHalfLength},
				entity.Vec2{X: l.Offset, Y: l.Center + gridDrawHalfLength}, 2*gridHalfWidth, col, alpha)
		}
	}
	return v
}

func (hazardGrid) spawnWave(c *Context, b *entity.Boss, s *hazardGridState) {
	add := func(i int, warn float64) {
		l := hazardLine{Horizontal: i%2 == 0, Warn: warn, Remaining: gridLethal}
		if l.Horizontal {
			l.Offset = b.Pos.Y + c.randRange(-gridSpread, gridSpread)
			l.Center = b.Pos.X
		} else {
			l.Offset = b.Pos.X + c.randRange(-gridSpread, gridSpread)
			l.Center = b.Pos.Y
		}
		s.lines = append(s.lines, l)
	}
	n := byPhase(gridLineCounts, b.Phase)
	for i := range n {
		add(i, gridWarn)
	}
	extra := 0
	if b.Phase >= 3 {
		extra = gridSecondWave
		for i := range extra {
			add(i, gridWarn+gridSecondWarn)
		}
	}
	s.waves++
	c.Emit(b, KindHazardGrid, EventHazardWave, map[string]any{"lines": n, "follow_up": extra})
}
