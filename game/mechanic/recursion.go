package mechanic

import (
	"math"

	"github.com/kasuganosora/bossarena/game/entity"
)

// failedSplitFloor is the health fraction a failed split restores, by phase.
var failedSplitFloor = []float64{1.0, 0.65, 0.35, 0.1}

const (
	splitRadius       = 80.0
	splitShare        = 0.5
	killWindow        = 8.0
	enrageDamage      = 1.15
	enrageSpeed       = 1.1
	recursionMerge    = 4
	recursionMaxSplit = 3
)

type recursionState struct {
	phase      phaseMirror
	splitCount int
	merged     bool
	copies     []*entity.Boss
	window     float64
	windowOpen bool
	failures   int
}

func (*recursionState) Kind() Kind { return KindRecursion }

// liveCopies counts copies that still hold health.
func (s *recursionState) liveCopies() int {
	n := 0
	for _, cp := range s.copies {
		if copyAlive(cp) {
			n++
		}
	}
	return n
}

type recursion struct{}

func (recursion) newState(_ *Context, b *entity.Boss) State {
	return &recursionState{phase: 1, splitCount: 1}
}

func (recursion) teardown(c *Context, _ entity.ID, st State) {
	s := st.(*recursionState)
	for _, cp := range s.copies {
		c.removeCopy(cp)
	}
	s.copies = nil
}

func (r recursion) update(c *Context, b *entity.Boss, st State) Visual {
	s := st.(*recursionState)

	for _, cp := range s.copies {
		if c.Store.Boss(cp.ID) == nil {
			cp.Dead = true
		}
	}

	if _, entered := s.phase.observe(b.Phase); entered && !s.merged {
		switch {
		case b.Phase >= recursionMerge:
			r.merge(c, b, s)
		case b.Phase >= recursionMaxSplit && s.splitCount < recursionMaxSplit:
			r.split(c, b, s, recursionMaxSplit)
		case b.Phase == 2 && s.splitCount < 2:
			r.split(c, b, s, 2)
		}
	}

	if len(s.copies) > 0 && !s.merged {
		r.watchWindow(c, b, s)
	}

	v := newVisual(b, KindRecursion)
	for _, cp := range s.copies {
		if copyAlive(cp) {
			v.line(b.Pos, cp.Pos, 2, ColorCopyLink, 0.6)
		}
	}
	if s.windowOpen {
		v.ring(b.Pos, splitRadius, 2, ColorWarning, clamp(s.window/killWindow, 0.2, 1))
	}
	return v
}

// split reabsorbs any live copies, then hands half of the pooled health to
// target-1 fresh copies. Boss health plus copy health equals the pool.
func (recursion) split(c *Context, b *entity.Boss, s *recursionState, target int) {
	pool := b.Health.Current
	for _, cp := range s.copies {
		if copyAlive(cp) {
			pool += cp.Health.Current
		}
		c.removeCopy(cp)
	}
	s.copies = s.copies[:0]
	s.windowOpen, s.window = false, 0

	n := target - 1
	share := math.Round(pool * splitShare)
	each := math.Floor(share / float64(n))
	for i := range n {
		h := each
		if i == n-1 {
			h = share - each*float64(n-1)
		}
		pos := b.Pos.Add(entity.Polar(2*math.Pi*float64(i)/float64(n), splitRadius))
		s.copies = append(s.copies, c.spawnCopy(b, pos, h))
	}
	b.Health.Current = pool - share
	s.splitCount = target
	c.Emit(b, KindRecursion, EventSplit, map[string]any{"copies": n, "boss_health": b.Health.Current, "copy_health": share})
}

// merge folds every live copy back into the boss for good.
func (recursion) merge(c *Context, b *entity.Boss, s *recursionState) {
	gained := 0.0
	for _, cp := range s.copies {
		if copyAlive(cp) {
			gained += cp.Health.Current
		}
		c.removeCopy(cp)
	}
	s.copies = nil
	s.windowOpen, s.window = false, 0
	b.Health.Current = math.Min(b.Health.Max, b.Health.Current+gained)
	s.merged = true
	c.Emit(b, KindRecursion, EventMerge, map[string]any{"gained": gained})
}

func (r recursion) watchWindow(c *Context, b *entity.Boss, s *recursionState) {
	live := s.liveCopies()
	if live == 0 {
		for _, cp := range s.copies {
			c.removeCopy(cp)
		}
		s.copies = s.copies[:0]
		if s.windowOpen {
			c.Emit(b, KindRecursion, EventKillWindow, map[string]any{"cleared": true})
		}
		s.windowOpen, s.window = false, 0
		return
	}

	dead := len(s.copies) - live
	if b.Health.Current <= 0 {
		dead++
	}
	if dead == 0 {
		return
	}
	if !s.windowOpen {
		s.windowOpen, s.window = true, killWindow
		c.Emit(b, KindRecursion, EventKillWindow, map[string]any{"seconds": killWindow})
		return
	}
	if countdown(&s.window, c.DT) {
		r.failSplit(c, b, s)
	}
}

// failSplit restores the boss to its phase floor and hardens it.
func (recursion) failSplit(c *Context, b *entity.Boss, s *recursionState) {
	floor := byPhase(failedSplitFloor, b.Phase) * b.Health.Max
	if b.Health.Current < floor {
		b.Health.Current = floor
	}
	b.Damage *= enrageDamage
	b.Speed *= enrageSpeed
	b.BaseSpeed *= enrageSpeed
	b.Enrage++
	for _, cp := range s.copies {
		c.removeCopy(cp)
	}
	s.copies = s.copies[:0]
	s.windowOpen, s.window = false, 0
	s.splitCount = 1
	s.failures++
	c.Emit(b, KindRecursion, EventSplitFailed, map[string]any{"enrage": b.Enrage, "health": b.Health.Current})
}
