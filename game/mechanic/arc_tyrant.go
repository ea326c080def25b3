package mechanic

import (
	"math"

	"github.com/kasuganosora/bossarena/game/entity"
)

var (
	rodCaps        = []int{4, 6, 8}
	rodIntervals   = []float64{8, 7, 5}
	pulseIntervals = []float64{4, 3, 1.5}
	chainHops      = []int{3, 5, 0} // 0 = every live rod
)

const (
	rodHitRadius    = 14.0
	rodMinRadius    = 100.0
	rodMaxRadius    = 220.0
	rodAuraRadius   = 50.0
	rodAuraRate     = 0.3
	chainBeamLife   = 3.0
	chainBeamRadius = 16.0
	chainBeamRate   = 0.4

	stormPhase     = 3
	stormCooldown  = 12.0
	stormDuration  = 6.0
	stormRadius    = 160.0
	stormBand      = 30.0
	stormGapHalf   = math.Pi / 6
	stormGapSpeed  = 1.2 // rad/s
	stormRate      = 0.4
	stormDrawWidth = 2 * stormBand
)

func rodHP(phase int) float64 { return 50 + 15*float64(phase) }

type chainBeam struct {
	From, To entity.Vec2
	Life     float64
}

// stormCage is a lethal ring with one rotating safe gap.
type stormCage struct {
	Active   bool
	Cooldown float64
	Left     float64
	Gap      float64 // center of the safe gap, radians in [0, 2π)
	GapStart float64
	Elapsed  float64
}

// safe reports whether angle lies within the gap.
func (s *stormCage) safe(angle float64) bool {
	return math.Abs(normalizeAngle(angle-s.Gap)) <= stormGapHalf
}

type arcTyrantState struct {
	phase     phaseMirror
	rods      []*entity.Companion
	place     float64
	pulse     float64
	beams     []chainBeam
	storm     stormCage
	batches   int
	pulses    int
	lastChain []entity.ID
}

func (*arcTyrantState) Kind() Kind { return KindArcTyrant }

type arcTyrant struct{}

func (arcTyrant) newState(_ *Context, b *entity.Boss) State {
	return &arcTyrantState{
		phase: 1,
		place: byPhase(rodIntervals, b.Phase),
		pulse: byPhase(pulseIntervals, b.Phase),
	}
}

func (arcTyrant) teardown(c *Context, _ entity.ID, st State) {
	for _, r := range st.(*arcTyrantState).rods {
		c.destroyCompanion(r)
	}
}

func (a arcTyrant) update(c *Context, b *entity.Boss, st State) Visual {
	s := st.(*arcTyrantState)
	if _, entered := s.phase.observe(b.Phase); entered {
		if iv := byPhase(rodIntervals, b.Phase); s.place > iv {
			s.place = iv
		}
		if iv := byPhase(pulseIntervals, b.Phase); s.pulse > iv {
			s.pulse = iv
		}
		if b.Phase >= stormPhase && !s.storm.Active && s.storm.Cooldown == 0 {
			s.storm.Cooldown = stormCooldown
		}
	}

	for _, r := range c.applyProjectileHits(b, KindArcTyrant, s.rods) {
		c.destroyCompanion(r)
	}
	s.rods = liveCompanions(s.rods)

	if countdown(&s.place, c.DT) {
		a.placeBatch(c, b, s)
		s.place = byPhase(rodIntervals, b.Phase)
	}
	if countdown(&s.pulse, c.DT) {
		a.chain(c, b, s)
		s.pulse = byPhase(pulseIntervals, b.Phase)
	}

	beams := s.beams[:0]
	for _, bm := range s.beams {
		if !countdown(&bm.Life, c.DT) {
			beams = append(beams, bm)
		}
	}
	s.beams = beams

	if b.Phase >= stormPhase {
		a.advanceStorm(c, b, s)
	}

	if p := c.Player; p != nil {
		for _, bm := range s.beams {
			if segmentDistance(p.Pos, bm.From, bm.To) <= chainBeamRadius {
				c.hurtPlayer(chainBeamRate * b.Damage * c.DT)
				break
			}
		}
		for _, r := range s.rods {
			if p.Pos.Dist(r.Pos) <= rodAuraRadius {
				c.hurtPlayer(rodAuraRate * b.Damage * c.DT)
				break
			}
		}
		if s.storm.Active {
			off := p.Pos.Sub(b.Pos)
			if math.Abs(off.Len()-stormRadius) <= stormBand && !s.storm.safe(off.Angle()) {
				c.hurtPlayer(stormRate * b.Damage * c.DT)
			}
		}
	}

	v := newVisual(b, KindArcTyrant)
	for _, r := range s.rods {
		v.circle(r.Pos, rodHitRadius, ColorLightning, 0.9)
		v.ring(r.Pos, rodAuraRadius, 1, ColorLightning, 0.3)
	}
	for _, bm := range s.beams {
		v.line(bm.From, bm.To, 3, ColorLightning, clamp(bm.Life/chainBeamLife, 0.2, 1))
	}
	if s.storm.Active {
		v.arc(b.Pos, stormRadius, s.storm.Gap+stormGapHalf, s.storm.Gap-stormGapHalf+2*math.Pi, stormDrawWidth, ColorLightning, 0.5)
	}
	return v
}

func (arcTyrant) placeBatch(c *Context, b *entity.Boss, s *arcTyrantState) {
	room := byPhase(rodCaps, b.Phase) - len(s.rods)
	if room <= 0 {
		return
	}
	n := 1
	if b.Phase >= 2 {
		n += c.RNG.Intn(2)
	}
	n = min(n, room)
	for range n {
		pos := b.Pos.Add(entity.Polar(c.RNG.Float64()*2*math.Pi, c.randRange(rodMinRadius, rodMaxRadius)))
		s.rods = append(s.rods, c.spawnCompanion(b, KindArcTyrant, entity.CompanionRod, len(s.rods), pos, rodHP(b.Phase), rodHitRadius))
	}
	s.batches++
}

// chain walks from the boss to the nearest eligible live rod, hop by hop.
// Each rod is visited at most once, or twice (never back-to-back) when
// double bounce is enabled.
func (arcTyrant) chain(c *Context, b *entity.Boss, s *arcTyrantState) {
	s.pulses++
	s.lastChain = s.lastChain[:0]
	if len(s.rods) == 0 {
		return
	}
	maxVisits := 1
	if c.doubleBounce {
		maxVisits = 2
	}
	hops := byPhase(chainHops, b.Phase)
	if hops == 0 {
		hops = len(s.rods) * maxVisits
	}

	visits := make(map[entity.ID]int, len(s.rods))
	from := b.Pos
	var prev entity.ID
	for range hops {
		var next *entity.Companion
		best := math.Inf(1)
		for _, r := range s.rods {
			if !r.Alive() || visits[r.ID] >= maxVisits || r.ID == prev {
				continue
			}
			if d := from.Dist(r.Pos); d < best {
				best, next = d, r
			}
		}
		if next == nil {
			break
		}
		visits[next.ID]++
		s.beams = append(s.beams, chainBeam{From: from, To: next.Pos, Life: chainBeamLife + c.RNG.Float64()})
		s.lastChain = append(s.lastChain, next.ID)
		from, prev = next.Pos, next.ID
	}
	c.Emit(b, KindArcTyrant, EventChainPulse, map[string]any{"hops": len(s.lastChain)})
}

func (arcTyrant) advanceStorm(c *Context, b *entity.Boss, s *arcTyrantState) {
	cage := &s.storm
	if cage.Active {
		cage.Elapsed += c.DT
		cage.Gap = wrapAngle(cage.Gap + stormGapSpeed*c.DT)
		if countdown(&cage.Left, c.DT) {
			cage.Active = false
			cage.Cooldown = stormCooldown
		}
		return
	}
	if countdown(&cage.Cooldown, c.DT) {
		cage.Active = true
		cage.Left = stormDuration
		cage.Gap = c.RNG.Float64() * 2 * math.Pi
		cage.GapStart = cage.Gap
		cage.Elapsed = 0
		c.Emit(b, KindArcTyrant, EventStormCage, map[string]any{"gap": cage.Gap})
	}
}
