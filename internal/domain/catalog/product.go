package catalog

import "time"

// Product is the root of the catalog tree. Deleting it removes its items.
type Product struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string `gorm:"column:title;size:255;not null" json:"title"`
	Description string `gorm:"column:description;type:text" json:"description"`

	CreatedBy *string   `gorm:"column:created_by;size:255" json:"created_by,omitempty"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedBy *string   `gorm:"column:updated_by;size:255" json:"updated_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (Product) TableName() string { return "product" }
