package models

import (
	"time"

	"gorm.io/gorm"
)

type StoreItem struct {
	ID          string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(150);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Cost        int64          `gorm:"not null" json:"cost"`
	ImageURL    *string        `gorm:"type:varchar(500)" json:"image_url,omitempty"`
	Category    *string        `gorm:"type:varchar(100)" json:"category,omitempty"`
	Active      bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (i *StoreItem) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

type Purchase struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	ItemID    string    `gorm:"type:varchar(36);not null" json:"item_id"`
	Cost      int64     `gorm:"not null" json:"cost"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Item StoreItem `gorm:"foreignKey:ItemID" json:"item,omitempty"`
}

func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
