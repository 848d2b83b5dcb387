package catalog

import "time"

type Item struct {
	ID        uint64   `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint64   `gorm:"column:product_id;not null;index" json:"product_id"`
	Product   *Product `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProductID;references:ID" json:"product,omitempty"`

	Title string `gorm:"column:title;size:255;not null" json:"title"`

	CreatedBy *string   `gorm:"column:created_by;size:255" json:"created_by,omitempty"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Item) TableName() string { return "item" }
