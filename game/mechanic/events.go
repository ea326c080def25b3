package mechanic

import "github.com/kasuganosora/bossarena/game/entity"

// EventType names a notable mechanic transition.
type EventType string

const (
	EventPhaseEnter         EventType = "phase_enter"
	EventHazardWave         EventType = "hazard_wave"
	EventSurge              EventType = "surge"
	EventEnemyBuffed        EventType = "enemy_buffed"
	EventBossHealed         EventType = "boss_healed"
	EventHeatRing           EventType = "heat_ring"
	EventVentStart          EventType = "vent_start"
	EventVent               EventType = "vent"
	EventLightPickup        EventType = "light_pickup"
	EventElementShift       EventType = "element_shift"
	EventOverload           EventType = "overload"
	EventCompanionSpawned   EventType = "companion_spawned"
	EventCompanionDestroyed EventType = "companion_destroyed"
	EventCompanionRevived   EventType = "companion_revived"
	EventIcePatch           EventType = "ice_patch"
	EventChainPulse         EventType = "chain_pulse"
	EventStormCage          EventType = "storm_cage"
	EventSplit              EventType = "split"
	EventMerge              EventType = "merge"
	EventKillWindow         EventType = "kill_window"
	EventSplitFailed        EventType = "split_failed"
	EventSwept              EventType = "swept"
)

// Event is emitted synchronously while a boss is being processed.
type Event struct {
	Boss     entity.ID      `json:"boss_id"`
	BossType string         `json:"boss_type"`
	Mechanic Kind           `json:"mechanic"`
	Type     EventType      `json:"type"`
	Phase    int            `json:"phase"`
	Data     map[string]any `json:"data,omitempty"`
}

// NewEvent builds an event for boss b.
func NewEvent(b *entity.Boss, k Kind, typ EventType, data map[string]any) Event {
	return Event{Boss: b.ID, BossType: b.Type, Mechanic: k, Type: typ, Phase: b.Phase, Data: data}
}
