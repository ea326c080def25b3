package encounter

import (
	"math"

	"github.com/kasuganosora/bossarena/game/entity"
	"github.com/kasuganosora/bossarena/game/mechanic"
	"go.uber.org/zap"
)

const (
	phaseSpeedBoost = 1.1
	addHealthShare  = 0.04
	addDamageShare  = 0.5
	addSpawnRadius  = 60.0
	addSpeed        = 80.0
	addKind         = "add"
)

// DefaultThresholds returns the health ratios at which each boss type
// enters its next phase, highest first.
func DefaultThresholds() map[string][]float64 {
	three := []float64{0.66, 0.33}
	four := []float64{0.65, 0.35, 0.10}
	return map[string][]float64{
		mechanic.TypeGridWarden: three,
		mechanic.TypeNullpoint:  three,
		mechanic.TypeHive:       three,
		mechanic.TypeArcTyrant:  three,
		mechanic.TypeFurnace:    four,
		mechanic.TypePrism:      four,
		mechanic.TypeTether:     four,
		mechanic.TypePermafrost: four,
		mechanic.TypeRecursion:  four,
		mechanic.TypeUmbra:      {0.80, 0.60, 0.40, 0.20},
	}
}

// HealthFunc reports the health pool that drives a boss's phase.
type HealthFunc func(b *entity.Boss) entity.Health

// PhaseCalculator advances boss phases from health ratios. A boss moves at
// most one phase per tick, and every phase's entry action runs exactly once.
type PhaseCalculator struct {
	thresholds map[string][]float64
	health     HealthFunc
	logger     *zap.Logger
	emit       func(mechanic.Event)
}

// NewPhaseCalculator merges overrides over DefaultThresholds. A nil
// health func reads the boss's own pool.
func NewPhaseCalculator(overrides map[string][]float64, health HealthFunc, logger *zap.Logger, emit func(mechanic.Event)) *PhaseCalculator {
	th := DefaultThresholds()
	for typ, v := range overrides {
		th[typ] = append([]float64(nil), v...)
	}
	if health == nil {
		health = func(b *entity.Boss) entity.Health { return b.Health }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PhaseCalculator{thresholds: th, health: health, logger: logger, emit: emit}
}

// Target is the phase b's current health calls for.
func (p *PhaseCalculator) Target(b *entity.Boss) int {
	ratio := p.health(b).Ratio()
	th := p.thresholds[b.Type]
	for i := len(th) - 1; i >= 0; i-- {
		if ratio <= th[i] {
			return i + 2
		}
	}
	return 1
}

// Update advances every live primary boss by at most one phase.
func (p *PhaseCalculator) Update(store *entity.Store) {
	for _, b := range store.Bosses() {
		if b.Dead || b.Parent != 0 {
			continue
		}
		if p.Target(b) > b.Phase {
			p.enter(store, b, b.Phase+1)
		}
	}
}

func (p *PhaseCalculator) enter(store *entity.Store, b *entity.Boss, phase int) {
	b.Phase = phase
	b.Speed *= phaseSpeedBoost
	b.BaseSpeed *= phaseSpeedBoost

	adds := phase - 1
	for i := 0; i < adds; i++ {
		angle := 2 * math.Pi * float64(i) / float64(adds)
		hp := math.Max(1, b.Health.Max*addHealthShare)
		store.AddEnemy(&entity.Enemy{
			Kind:   addKind,
			Pos:    b.Pos.Add(entity.Polar(angle, addSpawnRadius)),
			Health: entity.Health{Current: hp, Max: hp},
			Speed:  addSpeed,
			Damage: b.Damage * addDamageShare,
		})
	}

	p.logger.Info("boss phase entered",
		zap.Int64("boss_id", int64(b.ID)),
		zap.String("boss_type", b.Type),
		zap.Int("phase", phase),
		zap.Int("adds", adds))
	if p.emit != nil {
		p.emit(mechanic.NewEvent(b, mechanic.KindOf(b.Type), mechanic.EventPhaseEnter, map[string]any{
			"adds":  adds,
			"ratio": p.health(b).Ratio(),
		}))
	}
}
