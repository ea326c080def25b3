package mechanic

import "github.com/kasuganosora/bossarena/game/entity"

const (
	hiveBaseSpeed    = 30.0
	hiveSpeedStep    = 5.0
	hiveBuffRadius   = 100.0
	hiveHealRadius   = 120.0
	hiveSpeedBuff    = 1.3
	hiveDamageBuff   = 1.2
	hiveHealPercent  = 0.05
	hiveHealPercent3 = 0.08
)

type hiveState struct {
	phase    phaseMirror
	buffed   int
	healed   float64
	credited int
}

func (*hiveState) Kind() Kind { return KindHive }

type hive struct{}

func (hive) newState(_ *Context, b *entity.Boss) State {
	return &hiveState{phase: phaseMirror(b.Phase)}
}

func (hive) teardown(*Context, entity.ID, State) {}

func (hive) update(c *Context, b *entity.Boss, st State) Visual {
	s := st.(*hiveState)
	s.phase.observe(b.Phase)

	b.Speed = hiveBaseSpeed + hiveSpeedStep*float64(b.Phase-1)

	pct := hiveHealPercent
	if b.Phase >= 3 {
		pct = hiveHealPercent3
	}

	v := newVisual(b, KindHive)
	for _, e := range c.Store.Enemies() {
		d := e.Pos.Dist(b.Pos)
		dead := e.Dead || e.Health.Current <= 0
		if dead {
			if e.Has(entity.MarkCredited) {
				continue
			}
			// A death is judged once, where it happened.
			e.Set(entity.MarkCredited)
			if d <= hiveHealRadius {
				amount := pct * e.Health.Max
				b.Health.Heal(amount)
				s.healed += amount
				s.credited++
				c.Emit(b, KindHive, EventBossHealed, map[string]any{"enemy": int64(e.ID), "amount": amount})
			}
			continue
		}
		if d <= hiveBuffRadius && !e.Has(entity.MarkBuffed) {
			e.Set(entity.MarkBuffed)
			e.Speed *= hiveSpeedBuff
			e.Damage *= hiveDamageBuff
			s.buffed++
			c.Emit(b, KindHive, EventEnemyBuffed, map[string]any{"enemy": int64(e.ID)})
		}
		if e.Has(entity.MarkBuffed) {
			v.line(b.Pos, e.Pos, 1, ColorHive, 0.35)
		}
	}
	v.ring(b.Pos, hiveBuffRadius, 2, ColorHive, 0.4)
	return v
}
