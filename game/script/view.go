package script

import "github.com/kasuganosora/bossarena/game/entity"

// BossView is the driver's read-only view of one boss or split copy.
type BossView struct {
	ID     int64   `json:"id"`
	Type   string  `json:"type"`
	Phase  int     `json:"phase"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	HP     float64 `json:"hp"`
	MaxHP  float64 `json:"max_hp"`
	Parent int64   `json:"parent"`
}

// CompanionView is a live anchor, arm or rod the player can shoot.
type CompanionView struct {
	ID    int64   `json:"id"`
	Owner int64   `json:"owner"`
	Kind  string  `json:"kind"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	HP    float64 `json:"hp"`
}

// PlayerView is the player's position and health.
type PlayerView struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	HP    float64 `json:"hp"`
	MaxHP float64 `json:"max_hp"`
	Speed float64 `json:"speed"`
}

// View is the state handed to tick(state). Dead bosses and companions are
// left out.
type View struct {
	Tick       int64           `json:"tick"`
	Time       float64         `json:"time"`
	Player     *PlayerView     `json:"player"`
	Bosses     []BossView      `json:"bosses"`
	Companions []CompanionView `json:"companions"`
}

// Shot fires a projectile that resolves against companions this tick.
type Shot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Damage float64 `json:"damage"`
	Radius float64 `json:"radius"`
}

// Hit deals direct damage to a boss or split copy.
type Hit struct {
	Boss   int64   `json:"boss"`
	Damage float64 `json:"damage"`
}

// Command is what tick(state) returns. Absent velocity components leave
// the player's velocity unchanged.
type Command struct {
	VX   *float64 `json:"vx"`
	VY   *float64 `json:"vy"`
	Fire []Shot   `json:"fire"`
	Hit  []Hit    `json:"hit"`
}

// NewView captures the driver-visible state of store.
func NewView(tick int64, simTime float64, store *entity.Store) View {
	v := View{Tick: tick, Time: simTime}
	if p := store.Player(); p != nil {
		v.Player = &PlayerView{X: p.Pos.X, Y: p.Pos.Y, HP: p.Health.Current, MaxHP: p.Health.Max, Speed: p.Speed}
	}
	for _, b := range store.Bosses() {
		if b.Dead {
			continue
		}
		v.Bosses = append(v.Bosses, BossView{
			ID: int64(b.ID), Type: b.Type, Phase: b.Phase,
			X: b.Pos.X, Y: b.Pos.Y,
			HP: b.Health.Current, MaxHP: b.Health.Max,
			Parent: int64(b.Parent),
		})
	}
	for _, c := range store.Companions() {
		if !c.Alive() {
			continue
		}
		v.Companions = append(v.Companions, CompanionView{
			ID: int64(c.ID), Owner: int64(c.Owner), Kind: string(c.Kind),
			X: c.Pos.X, Y: c.Pos.Y, HP: c.HP,
		})
	}
	return v
}
