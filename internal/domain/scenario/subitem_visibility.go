package scenario

import (
	"time"

	"github.com/yungbote/playbook-backend/internal/domain/catalog"
)

// SubitemVisibility overrides whether a subitem renders inside a scenario.
// A missing row means visible. ItemID must match the subitem's parent item.
//
// IsVisible has no column default: gorm drops zero values for defaulted
// columns on insert, which would silently turn false into true.
type SubitemVisibility struct {
	ID         uint64           `gorm:"primaryKey;autoIncrement" json:"-"`
	ScenarioID uint64           `gorm:"column:scenario_id;not null;uniqueIndex:idx_scenario_subitem_pair,priority:1;index:idx_scenario_subitem_item,priority:1" json:"scenario_id"`
	Scenario   *Scenario        `gorm:"constraint:OnDelete:CASCADE;foreignKey:ScenarioID;references:ID" json:"scenario,omitempty"`
	ItemID     uint64           `gorm:"column:item_id;not null;index:idx_scenario_subitem_item,priority:2" json:"item_id"`
	SubitemID  uint64           `gorm:"column:subitem_id;not null;uniqueIndex:idx_scenario_subitem_pair,priority:2" json:"subitem_id"`
	Subitem    *catalog.Subitem `gorm:"constraint:OnDelete:CASCADE;foreignKey:SubitemID;references:ID" json:"subitem,omitempty"`
	IsVisible  bool             `gorm:"column:is_visible;not null" json:"is_visible"`

	CreatedBy *string   `gorm:"column:created_by;size:255" json:"created_by,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedBy *string   `gorm:"column:updated_by;size:255" json:"updated_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (SubitemVisibility) TableName() string { return "scenario_subitem" }
