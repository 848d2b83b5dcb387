package scenario

import (
	"time"

	"github.com/yungbote/playbook-backend/internal/domain/catalog"
)

// ScenarioItem links an item into a scenario. (scenario_id, item_id) is unique.
type ScenarioItem struct {
	ID         uint64        `gorm:"primaryKey;autoIncrement" json:"-"`
	ScenarioID uint64        `gorm:"column:scenario_id;not null;uniqueIndex:idx_scenario_item_pair,priority:1" json:"scenario_id"`
	Scenario   *Scenario     `gorm:"constraint:OnDelete:CASCADE;foreignKey:ScenarioID;references:ID" json:"scenario,omitempty"`
	ItemID     uint64        `gorm:"column:item_id;not null;uniqueIndex:idx_scenario_item_pair,priority:2;index" json:"item_id"`
	Item       *catalog.Item `gorm:"constraint:OnDelete:CASCADE;foreignKey:ItemID;references:ID" json:"item,omitempty"`

	DisplayOrder int `gorm:"column:display_order;not null" json:"display_order"`

	CreatedBy *string   `gorm:"column:created_by;size:255" json:"created_by,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (ScenarioItem) TableName() string { return "scenario_item" }

// ScenarioItemView is a link joined with the item metadata needed for display.
type ScenarioItemView struct {
	ScenarioID   uint64    `json:"scenario_id"`
	ItemID       uint64    `json:"item_id"`
	DisplayOrder int       `json:"display_order"`
	CreatedBy    *string   `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ItemTitle    string    `json:"item_title"`
	ProductID    uint64    `json:"product_id"`
}
