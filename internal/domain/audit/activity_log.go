package audit

import (
	"time"

	"gorm.io/datatypes"
)

const (
	KindContentEdit = "content_edit"
	KindLogin       = "login"
)

// ActivityLog records who changed what. EntityID is 0 when the action has no
// single target (batch operations record their ids in Metadata).
type ActivityLog struct {
	ID         uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Actor      string         `gorm:"column:actor;size:255;not null;index" json:"actor"`
	IPAddress  string         `gorm:"column:ip_address;size:45" json:"ip_address"`
	Kind       string         `gorm:"column:kind;size:32;not null;index" json:"kind"`
	Action     string         `gorm:"column:action;size:64;not null" json:"action"`
	EntityType string         `gorm:"column:entity_type;size:32" json:"entity_type"`
	EntityID   uint64         `gorm:"column:entity_id" json:"entity_id"`
	Metadata   datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;index" json:"created_at"`
}

func (ActivityLog) TableName() string { return "activity_log" }
