package repository

import (
	"context"
	"time"

	"github.com/yukikurage/taskquest-api/internal/database"
	"github.com/yukikurage/taskquest-api/internal/models"
	"gorm.io/gorm"
)

const (
	leaderboardColumns = "users.id AS user_id, users.display_name AS display_name, users.avatar_url AS avatar_url, tiers.name AS tier_name"
	leaderboardGroupBy = "users.id, users.display_name, users.avatar_url, tiers.name"
	leaderboardOrder   = "score DESC, users.id ASC"
)

// GormLeaderboardRepository is a GORM implementation of LeaderboardRepository
type GormLeaderboardRepository struct {
	db *gorm.DB
}

// NewLeaderboardRepository creates a new LeaderboardRepository
func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &GormLeaderboardRepository{db: db}
}

// Global ranks all users by lifetime points
func (r *GormLeaderboardRepository) Global(ctx context.Context, offset, limit int) ([]LeaderboardRow, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []LeaderboardRow
	err := r.db.WithContext(ctx).Table("users").
		Select(leaderboardColumns + ", users.points AS score").
		Joins("LEFT JOIN tiers ON tiers.id = users.tier_id").
		Where("users.deleted_at IS NULL").
		Order(leaderboardOrder).
		Scopes(database.Paginate(offset, limit)).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// Project ranks project members by the points they earned in the project.
// Members without events score zero.
func (r *GormLeaderboardRepository) Project(ctx context.Context, projectID string, offset, limit int) ([]LeaderboardRow, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Table("project_members").
		Joins("JOIN users ON users.id = project_members.user_id").
		Where("project_members.project_id = ? AND users.deleted_at IS NULL", projectID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []LeaderboardRow
	err := r.db.WithContext(ctx).Table("project_members").
		Select(leaderboardColumns+", COALESCE(SUM(point_events.amount), 0) AS score").
		Joins("JOIN users ON users.id = project_members.user_id").
		Joins("LEFT JOIN tiers ON tiers.id = users.tier_id").
		Joins("LEFT JOIN point_events ON point_events.user_id = users.id AND point_events.project_id = project_members.project_id").
		Where("project_members.project_id = ? AND users.deleted_at IS NULL", projectID).
		Group(leaderboardGroupBy).
		Order(leaderboardOrder).
		Scopes(database.Paginate(offset, limit)).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// Since ranks all users by points earned at or after since
func (r *GormLeaderboardRepository) Since(ctx context.Context, since time.Time, offset, limit int) ([]LeaderboardRow, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []LeaderboardRow
	err := r.db.WithContext(ctx).Table("users").
		Select(leaderboardColumns+", COALESCE(SUM(point_events.amount), 0) AS score").
		Joins("LEFT JOIN tiers ON tiers.id = users.tier_id").
		Joins("LEFT JOIN point_events ON point_events.user_id = users.id AND point_events.created_at >= ?", since).
		Where("users.deleted_at IS NULL").
		Group(leaderboardGroupBy).
		Order(leaderboardOrder).
		Scopes(database.Paginate(offset, limit)).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
