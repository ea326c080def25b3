package mechanic

import (
	"math"

	"github.com/kasuganosora/bossarena/game/entity"
)

// timerEpsilon absorbs float drift when a fixed dt is subtracted many times.
const timerEpsilon = 1e-9

// countdown consumes dt from a running timer and reports whether it expired
// on this call. The timer is clamped at 0; a timer already at 0 is idle and
// never reports expiry again until it is re-armed.
func countdown(t *float64, dt float64) bool {
	if *t <= 0 {
		*t = 0
		return false
	}
	*t -= dt
	if *t <= timerEpsilon {
		*t = 0
		return true
	}
	return false
}

// byPhase selects table[min(phase-1, len-1)], clamping low phases to the first entry.
func byPhase[T any](table []T, phase int) T {
	i := phase - 1
	if i < 0 {
		i = 0
	}
	if i >= len(table) {
		i = len(table) - 1
	}
	return table[i]
}

// segmentDistance is the distance from p to the closest point on segment ab.
func segmentDistance(p, a, b entity.Vec2) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Dist(a)
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Dist(a.Add(ab.Scale(t)))
}

// normalizeAngle maps a to [-π, π].
func normalizeAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// wrapAngle maps a to [0, 2π).
func wrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// phaseMirror is the last boss phase a mechanic reacted to.
type phaseMirror int

// observe records phase and reports the previous value and whether the
// phase advanced since the last call. Repeated calls at the same phase
// never report a transition.
func (m *phaseMirror) observe(phase int) (prev int, entered bool) {
	prev = int(*m)
	if phase > prev {
		*m = phaseMirror(phase)
		return prev, true
	}
	return prev, false
}
