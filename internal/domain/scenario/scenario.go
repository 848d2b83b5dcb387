package scenario

import "time"

// Scenario is a named curated view. It references items by id only and owns
// nothing in the catalog tree.
type Scenario struct {
	ID                   uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title                string  `gorm:"column:title;size:255;not null" json:"title"`
	Description          string  `gorm:"column:description;type:text" json:"description"`
	FormattedDescription *string `gorm:"column:formatted_description;type:text" json:"formatted_description,omitempty"`

	CreatedBy *string   `gorm:"column:created_by;size:255" json:"created_by,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedBy *string   `gorm:"column:updated_by;size:255" json:"updated_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (Scenario) TableName() string { return "scenario" }
