// Package testutil builds throwaway databases and fixtures for tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskquest-api/internal/database"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory SQLite database seeded with the
// default tiers. Each call gets its own database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := NewEmptyTestDB(t)
	require.NoError(t, database.SeedTiers(db, database.DefaultTiers()))
	return db
}

// NewEmptyTestDB opens a migrated in-memory SQLite database without tiers.
func NewEmptyTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// Every pooled connection to ":memory:" is a separate database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// LowestTier returns the lowest seeded tier.
func LowestTier(t *testing.T, db *gorm.DB) models.Tier {
	t.Helper()

	var tier models.Tier
	require.NoError(t, db.Order("rank_order ASC").First(&tier).Error)
	return tier
}

// CreateUser inserts a MEMBER in the lowest tier. Mutators run before insert.
func CreateUser(t *testing.T, db *gorm.DB, email string, mutators ...func(*models.User)) *models.User {
	t.Helper()

	user := &models.User{
		Email:        email,
		PasswordHash: "hashedpassword",
		DisplayName:  email,
		Role:         models.RoleMember,
		TierID:       LowestTier(t, db).ID,
	}
	for _, mutate := range mutators {
		mutate(user)
	}
	require.NoError(t, db.Omit("Tier").Create(user).Error)
	return user
}

// CreateProject inserts a project owned by owner, with owner membership.
func CreateProject(t *testing.T, db *gorm.DB, name string, owner *models.User) *models.Project {
	t.Helper()

	code, err := utils.GenerateInviteCode()
	require.NoError(t, err)

	project := &models.Project{
		Name:       name,
		InviteCode: code,
		OwnerID:    owner.ID,
	}
	require.NoError(t, db.Omit("Members", "Columns").Create(project).Error)
	AddMember(t, db, project, owner, models.ProjectRoleOwner)
	return project
}

// AddMember adds user to project.
func AddMember(t *testing.T, db *gorm.DB, project *models.Project, user *models.User, role models.ProjectRole) {
	t.Helper()

	member := &models.ProjectMember{
		ProjectID: project.ID,
		UserID:    user.ID,
		Role:      role,
		JoinedAt:  time.Now(),
	}
	require.NoError(t, db.Omit("Project", "User").Create(member).Error)
}

// CreateTask inserts a TODO task of difficulty 1 created by creator.
func CreateTask(t *testing.T, db *gorm.DB, title string, project *models.Project, creator *models.User, mutators ...func(*models.Task)) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:      title,
		Difficulty: 1,
		Status:     models.TaskStatusTodo,
		ProjectID:  project.ID,
		CreatorID:  creator.ID,
	}
	for _, mutate := range mutators {
		mutate(task)
	}
	require.NoError(t, db.Omit("Creator", "Assignee", "RequiredTier").Create(task).Error)
	return task
}

// CreatePointEvent records amount points for user at the given time.
func CreatePointEvent(t *testing.T, db *gorm.DB, user *models.User, projectID *string, amount int64, at time.Time) {
	t.Helper()

	require.NoError(t, db.Create(&models.PointEvent{
		UserID:    user.ID,
		ProjectID: projectID,
		Amount:    amount,
		Reason:    "test",
		CreatedAt: at,
	}).Error)
}

// Email returns a unique address for fixtures.
func Email(prefix string) string {
	return fmt.Sprintf("%s-%s@example.com", prefix, uuid.NewString()[:8])
}
