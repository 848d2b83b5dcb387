package catalog

import "time"

// Subitem is a leaf content unit. Description holds sanitized HTML from the
// rich-text editor and is stored verbatim.
type Subitem struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemID uint64 `gorm:"column:item_id;not null;index" json:"item_id"`
	Item   *Item  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ItemID;references:ID" json:"item,omitempty"`

	Title       string  `gorm:"column:title;size:255;not null" json:"title"`
	Subtitle    *string `gorm:"column:subtitle;size:255" json:"subtitle,omitempty"`
	Description string  `gorm:"column:description;type:text" json:"description"`
	FilePath    *string `gorm:"column:file_path;size:255" json:"file_path,omitempty"`

	LastUpdatedBy *string    `gorm:"column:last_updated_by;size:255" json:"last_updated_by,omitempty"`
	LastUpdatedAt *time.Time `gorm:"column:last_updated_at" json:"last_updated_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}

func (Subitem) TableName() string { return "subitem" }
