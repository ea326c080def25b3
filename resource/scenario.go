// Package resource loads encounter scenario files.
package resource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kasuganosora/bossarena/game/entity"
	"github.com/kasuganosora/bossarena/game/mechanic"
	"gopkg.in/yaml.v3"
)

// ErrUnknownBossType is returned for a boss whose type has no mechanic.
var ErrUnknownBossType = errors.New("scenario: unknown boss type")

// Scenario describes the starting roster of an encounter.
type Scenario struct {
	Name    string      `yaml:"name"`
	Player  *PlayerSpec `yaml:"player"`
	Bosses  []BossSpec  `yaml:"bosses"`
	Enemies []EnemySpec `yaml:"enemies"`

	// Driver is inline JavaScript for the scripted player. DriverFile is
	// resolved relative to the scenario file and takes precedence.
	Driver     string `yaml:"driver"`
	DriverFile string `yaml:"driver_file"`
}

type PlayerSpec struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	HP    float64 `yaml:"hp"`
	Speed float64 `yaml:"speed"`
}

type BossSpec struct {
	Type   string  `yaml:"type"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	HP     float64 `yaml:"hp"`
	Speed  float64 `yaml:"speed"`
	Damage float64 `yaml:"damage"`
	Phase  int     `yaml:"phase"`
}

type EnemySpec struct {
	Kind   string  `yaml:"kind"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	HP     float64 `yaml:"hp"`
	Speed  float64 `yaml:"speed"`
	Damage float64 `yaml:"damage"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.DriverFile != "" {
		p := sc.DriverFile
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(path), p)
		}
		src, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("scenario: driver %s: %w", p, err)
		}
		sc.Driver = string(src)
	}
	return sc, nil
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("scenario: parse: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks boss types and health values.
func (sc *Scenario) Validate() error {
	if len(sc.Bosses) == 0 {
		return errors.New("scenario: no bosses")
	}
	for i, b := range sc.Bosses {
		if mechanic.KindOf(b.Type) == mechanic.KindNone {
			return fmt.Errorf("%w: bosses[%d] %q", ErrUnknownBossType, i, b.Type)
		}
		if b.HP <= 0 {
			return fmt.Errorf("scenario: bosses[%d] hp must be positive", i)
		}
		if b.Phase < 0 {
			return fmt.Errorf("scenario: bosses[%d] phase must not be negative", i)
		}
	}
	if sc.Player != nil && sc.Player.HP <= 0 {
		return errors.New("scenario: player hp must be positive")
	}
	return nil
}

// Populate adds the scenario's player, bosses and enemies to store.
// Bosses are created in file order.
func (sc *Scenario) Populate(store *entity.Store) {
	if p := sc.Player; p != nil {
		store.SetPlayer(&entity.Player{
			Pos:    entity.Vec2{X: p.X, Y: p.Y},
			Health: entity.Health{Current: p.HP, Max: p.HP},
			Speed:  p.Speed,
		})
	}
	for _, b := range sc.Bosses {
		store.AddBoss(&entity.Boss{
			Type:   b.Type,
			Phase:  b.Phase,
			Pos:    entity.Vec2{X: b.X, Y: b.Y},
			Speed:  b.Speed,
			Health: entity.Health{Current: b.HP, Max: b.HP},
			Damage: b.Damage,
		})
	}
	for _, e := range sc.Enemies {
		store.AddEnemy(&entity.Enemy{
			Kind:   e.Kind,
			Pos:    entity.Vec2{X: e.X, Y: e.Y},
			Health: entity.Health{Current: e.HP, Max: e.HP},
			Speed:  e.Speed,
			Damage: e.Damage,
		})
	}
}
