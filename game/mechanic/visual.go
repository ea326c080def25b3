package mechanic

import "github.com/kasuganosora/bossarena/game/entity"

// Shape is a drawable primitive type.
type Shape string

const (
	ShapeCircle Shape = "circle" // filled disc
	ShapeRing   Shape = "ring"   // outline with Width
	ShapeLine   Shape = "line"
	ShapeArc    Shape = "arc" // outline from From to To radians
)

// Color is 0xRRGGBB.
type Color uint32

const (
	ColorWarning   Color = 0xffaa33
	ColorHazard    Color = 0xff3322
	ColorGravity   Color = 0x8844ff
	ColorHive      Color = 0xddcc22
	ColorHeat      Color = 0xff6611
	ColorLight     Color = 0xfff2c0
	ColorFire      Color = 0xff4411
	ColorIce       Color = 0x66ddff
	ColorLightning Color = 0xffff55
	ColorBeam      Color = 0x55aaff
	ColorAnchor    Color = 0x9999bb
	ColorSafe      Color = 0x44ff88
	ColorCopyLink  Color = 0xcc66ff
)

// Primitive is one shape for the renderer. Only the fields relevant to
// Shape are meaningful.
type Primitive struct {
	Shape  Shape   `json:"shape"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	X2     float64 `json:"x2,omitempty"`
	Y2     float64 `json:"y2,omitempty"`
	Radius float64 `json:"radius,omitempty"`
	Width  float64 `json:"width,omitempty"`
	From   float64 `json:"from,omitempty"`
	To     float64 `json:"to,omitempty"`
	Color  Color   `json:"color"`
	Alpha  float64 `json:"alpha"`
}

// Visual is the per-boss, per-mechanic draw list for one tick.
// It is pure data; producing it has no side effects.
type Visual struct {
	Boss      entity.ID   `json:"boss_id"`
	Kind      Kind        `json:"mechanic"`
	BossAlpha float64     `json:"boss_alpha"`
	Shapes    []Primitive `json:"shapes"`
}

func newVisual(b *entity.Boss, k Kind) Visual {
	return Visual{Boss: b.ID, Kind: k, BossAlpha: 1}
}

func (v *Visual) circle(at entity.Vec2, r float64, c Color, alpha float64) {
	v.Shapes = append(v.Shapes, Primitive{Shape: ShapeCircle, X: at.X, Y: at.Y, Radius: r, Color: c, Alpha: alpha})
}

func (v *Visual) ring(at entity.Vec2, r, width float64, c Color, alpha float64) {
	v.Shapes = append(v.Shapes, Primitive{Shape: ShapeRing, X: at.X, Y: at.Y, Radius: r, Width: width, Color: c, Alpha: alpha})
}

func (v *Visual) line(a, b entity.Vec2, width float64, c Color, alpha float64) {
	v.Shapes = append(v.Shapes, Primitive{Shape: ShapeLine, X: a.X, Y: a.Y, X2: b.X, Y2: b.Y, Width: width, Color: c, Alpha: alpha})
}

func (v *Visual) arc(at entity.Vec2, r, from, to, width float64, c Color, alpha float64) {
	v.Shapes = append(v.Shapes, Primitive{Shape: ShapeArc, X: at.X, Y: at.Y, Radius: r, From: from, To: to, Width: width, Color: c, Alpha: alpha})
}

// Frame is everything the engine produced in one tick, in dispatch order.
type Frame struct {
	Visuals []Visual `json:"visuals"`
}
