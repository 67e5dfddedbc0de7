package repository

import (
	"context"

	"github.com/yukikurage/taskquest-api/internal/models"
	"gorm.io/gorm"
)

// GormTierRepository is a GORM implementation of TierRepository
type GormTierRepository struct {
	db *gorm.DB
}

// NewTierRepository creates a new TierRepository
func NewTierRepository(db *gorm.DB) TierRepository {
	return &GormTierRepository{db: db}
}

// Lowest returns the tier with the smallest order
func (r *GormTierRepository) Lowest(ctx context.Context) (*models.Tier, error) {
	var tier models.Tier
	if err := r.db.WithContext(ctx).Order("rank_order ASC").First(&tier).Error; err != nil {
		return nil, err
	}
	return &tier, nil
}

// FindByID finds a tier by ID
func (r *GormTierRepository) FindByID(ctx context.Context, id string) (*models.Tier, error) {
	var tier models.Tier
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tier).Error; err != nil {
		return nil, err
	}
	return &tier, nil
}

// List returns every tier in order
func (r *GormTierRepository) List(ctx context.Context) ([]models.Tier, error) {
	var tiers []models.Tier
	if err := r.db.WithContext(ctx).Order("rank_order ASC").Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}
