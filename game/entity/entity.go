package entity

import "math"

// ID is a stable entity handle. Zero is never issued.
type ID int64

// Vec2 is a position or velocity in world pixels.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2        { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2        { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(k float64) Vec2   { return Vec2{v.X * k, v.Y * k} }
func (v Vec2) Dot(o Vec2) float64     { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Len() float64           { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64    { return math.Hypot(v.X-o.X, v.Y-o.Y) }
func (v Vec2) Angle() float64         { return math.Atan2(v.Y, v.X) }
func Polar(angle, r float64) Vec2     { return Vec2{math.Cos(angle) * r, math.Sin(angle) * r} }

// Norm returns the unit vector, or the zero vector when v has no length.
func (v Vec2) Norm() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Health is a clamped hit-point pool.
type Health struct {
	Current float64 `json:"current"`
	Max     float64 `json:"max"`
}

// Damage lowers Current, never below 0. Returns true when the pool is empty.
func (h *Health) Damage(amount float64) bool {
	if amount > 0 {
		h.Current = math.Max(0, h.Current-amount)
	}
	return h.Current <= 0
}

// Heal raises Current, never above Max.
func (h *Health) Heal(amount float64) {
	if amount > 0 {
		h.Current = math.Min(h.Max, h.Current+amount)
	}
}

// Ratio is Current/Max clamped to [0, 1].
func (h Health) Ratio() float64 {
	if h.Max <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, h.Current/h.Max))
}

// Player is the single player avatar. Mechanics mutate it in place.
type Player struct {
	Pos    Vec2    `json:"pos"`
	Vel    Vec2    `json:"vel"`
	Health Health  `json:"health"`
	Speed  float64 `json:"speed"`
}

// Mark is a per-entity tag set used by aura mechanics to stay idempotent.
type Mark uint8

const (
	MarkBuffed Mark = 1 << iota
	MarkCredited
)

// Enemy is an ordinary non-boss enemy.
type Enemy struct {
	ID     ID      `json:"id"`
	Kind   string  `json:"kind"`
	Pos    Vec2    `json:"pos"`
	Vel    Vec2    `json:"vel"`
	Health Health  `json:"health"`
	Speed  float64 `json:"speed"`
	Damage float64 `json:"damage"`
	Dead   bool    `json:"dead"`
	Marks  Mark    `json:"marks"`
}

func (e *Enemy) Has(m Mark) bool { return e.Marks&m != 0 }
func (e *Enemy) Set(m Mark)      { e.Marks |= m }

// Boss is a boss entity. Dead is owned by the external health system;
// mechanics only touch phase/speed/damage/alpha and read health.
type Boss struct {
	ID        ID      `json:"id"`
	Type      string  `json:"type"`
	Phase     int     `json:"phase"`
	Pos       Vec2    `json:"pos"`
	Vel       Vec2    `json:"vel"`
	Speed     float64 `json:"speed"`
	BaseSpeed float64 `json:"base_speed"`
	Health    Health  `json:"health"`
	Damage    float64 `json:"damage"`
	Dead      bool    `json:"dead"`
	Alpha     float64 `json:"alpha"`
	Enrage    int     `json:"enrage,omitempty"`
	Parent    ID      `json:"parent,omitempty"` // non-zero for split copies
}

// CompanionKind names the destructible helper objects a mechanic can own.
type CompanionKind string

const (
	CompanionAnchor CompanionKind = "anchor"
	CompanionArm    CompanionKind = "arm"
	CompanionRod    CompanionKind = "rod"
)

// Companion is a destructible object owned by a boss mechanic.
type Companion struct {
	ID        ID            `json:"id"`
	Owner     ID            `json:"owner"`
	Kind      CompanionKind `json:"kind"`
	Slot      int           `json:"slot"`
	Pos       Vec2          `json:"pos"`
	HP        float64       `json:"hp"`
	MaxHP     float64       `json:"max_hp"`
	HitRadius float64       `json:"hit_radius"`
	Dead      bool          `json:"dead"`
	Regen     float64       `json:"regen,omitempty"` // seconds until respawn, 0 = none pending
}

// Alive reports whether the companion still participates in beams and hit checks.
func (c *Companion) Alive() bool { return c != nil && !c.Dead && c.HP > 0 }

// Projectile is a damage-dealing shot owned by the collision collaborator.
type Projectile struct {
	ID       ID      `json:"id"`
	Pos      Vec2    `json:"pos"`
	Damage   float64 `json:"damage"`
	Radius   float64 `json:"radius"`
	Consumed bool    `json:"consumed"`
}
