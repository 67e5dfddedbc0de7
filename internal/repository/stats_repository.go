package repository

import (
	"context"

	"github.com/yukikurage/taskquest-api/internal/models"
	"gorm.io/gorm"
)

// GormStatsRepository is a GORM implementation of StatsRepository
type GormStatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &GormStatsRepository{db: db}
}

// Summary counts users, projects and tasks and totals lifetime points
func (r *GormStatsRepository) Summary(ctx context.Context) (*Stats, error) {
	db := r.db.WithContext(ctx)
	var stats Stats

	if err := db.Model(&models.User{}).Count(&stats.Users).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Project{}).Count(&stats.Projects).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Task{}).Count(&stats.Tasks).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Task{}).Where("status = ?", models.TaskStatusDone).Count(&stats.CompletedTasks).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Select("COALESCE(SUM(points), 0)").Scan(&stats.TotalPoints).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}
