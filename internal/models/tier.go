package models

import (
	"time"

	"gorm.io/gorm"
)

type Tier struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id" yaml:"-"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name" yaml:"name"`
	Order       int       `gorm:"column:rank_order;uniqueIndex;not null" json:"order" yaml:"order"`
	MinPoints   int64     `gorm:"not null;default:0" json:"min_points" yaml:"min_points"`
	Description string    `gorm:"type:text" json:"description" yaml:"description"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}

func (t *Tier) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}
