package model

import (
	"time"

	"gorm.io/datatypes"
)

// EncounterEvent is one mechanic event journaled from a running encounter.
type EncounterEvent struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	EncounterID string         `gorm:"index:idx_event_encounter;size:36;not null" json:"encounter_id"`
	BossID      int64          `gorm:"index:idx_event_boss" json:"boss_id"`
	BossType    string         `gorm:"size:32" json:"boss_type"`
	Mechanic    string         `gorm:"size:32" json:"mechanic"`
	Type        string         `gorm:"size:32;not null" json:"type"`
	Phase       int            `json:"phase"`
	Tick        int64          `json:"tick"`
	Payload     datatypes.JSON `json:"payload"`
	CreatedAt   time.Time      `gorm:"index:idx_event_created;autoCreateTime:milli" json:"created_at"`
}
