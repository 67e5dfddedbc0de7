package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes used by the leaderboard and board queries
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Leaderboard aggregates
		{"point_events", "idx_point_events_project_user", "project_id, user_id"},
		{"point_events", "idx_point_events_user_created", "user_id, created_at"},
		{"users", "idx_users_points", "points"},

		// Board listing
		{"tasks", "idx_tasks_project_status", "project_id, status"},
		{"tasks", "idx_tasks_project_created", "project_id, created_at"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
