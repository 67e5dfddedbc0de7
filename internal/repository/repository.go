package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/taskquest-api/internal/models"
)

// ErrInsufficientBalance is returned when a debit would make a balance negative.
var ErrInsufficientBalance = errors.New("repository: insufficient balance")

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID with its tier preloaded
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindOrCreateByEmail returns the user owning user.Email, creating user when
	// none exists. created reports whether this call inserted the row.
	FindOrCreateByEmail(ctx context.Context, user *models.User) (found *models.User, created bool, err error)

	// Update applies column updates to a user
	Update(ctx context.Context, id string, fields map[string]interface{}) error

	// ResetStreaks zeroes streaks. With a non-nil staleBefore only users whose
	// last activity is older than it (or unknown) are reset.
	ResetStreaks(ctx context.Context, staleBefore *time.Time) (int64, error)
}

// TierRepository defines the interface for tier data access
type TierRepository interface {
	// Lowest returns the tier with the smallest order
	Lowest(ctx context.Context) (*models.Tier, error)

	// FindByID finds a tier by ID
	FindByID(ctx context.Context, id string) (*models.Tier, error)

	// List returns every tier in order
	List(ctx context.Context) ([]models.Tier, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a project and its owner membership atomically
	Create(ctx context.Context, project *models.Project, owner *models.ProjectMember) error

	// FindByID finds a project by ID
	FindByID(ctx context.Context, id string) (*models.Project, error)

	// FindByInviteCode finds a project by invite code
	FindByInviteCode(ctx context.Context, code string) (*models.Project, error)

	// Update updates a project
	Update(ctx context.Context, project *models.Project) error

	// Delete deletes a project and all related data
	Delete(ctx context.Context, id string) error

	// AddMember adds a member to a project
	AddMember(ctx context.Context, member *models.ProjectMember) error

	// RemoveMember removes a member from a project
	RemoveMember(ctx context.Context, projectID, userID string) error

	// FindMember finds a specific project member
	FindMember(ctx context.Context, projectID, userID string) (*models.ProjectMember, error)

	// ListMembersByUserID lists all projects a user is a member of
	ListMembersByUserID(ctx context.Context, userID string) ([]models.ProjectMember, error)

	// ListMembers lists all members of a project
	ListMembers(ctx context.Context, projectID string) ([]models.ProjectMember, error)

	// CreateColumn adds a kanban column
	CreateColumn(ctx context.Context, column *models.Column) error

	// FindColumn finds a column of a project
	FindColumn(ctx context.Context, projectID, columnID string) (*models.Column, error)

	// ListColumns lists the columns of a project by position
	ListColumns(ctx context.Context, projectID string) ([]models.Column, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectID string
	Status    *models.TaskStatus
	Offset    int
	Limit     int
}

// Award describes points granted for completing a task
type Award struct {
	UserID string
	Amount int64
	Reason string
	At     time.Time
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id string, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update saves a task
	Update(ctx context.Context, task *models.Task) error

	// UpdateWithAward saves a task that reached DONE and, unless the task was
	// already completed once, credits the award in the same transaction.
	UpdateWithAward(ctx context.Context, task *models.Task, award Award) (awarded bool, err error)

	// Delete soft deletes a task
	Delete(ctx context.Context, id string) error
}

// LeaderboardRow is one scored user
type LeaderboardRow struct {
	UserID      string
	DisplayName string
	AvatarURL   string
	TierName    string
	Score       int64
}

// LeaderboardRepository computes ranked score pages. Rows are ordered by
// score descending, then user id ascending.
type LeaderboardRepository interface {
	// Global ranks all users by lifetime points
	Global(ctx context.Context, offset, limit int) ([]LeaderboardRow, int64, error)

	// Project ranks the members of a project by points earned in it
	Project(ctx context.Context, projectID string, offset, limit int) ([]LeaderboardRow, int64, error)

	// Since ranks all users by points earned at or after since
	Since(ctx context.Context, since time.Time, offset, limit int) ([]LeaderboardRow, int64, error)
}

// StoreRepository defines the interface for store data access
type StoreRepository interface {
	// ListActiveItems lists purchasable items
	ListActiveItems(ctx context.Context) ([]models.StoreItem, error)

	// FindActiveItem finds a purchasable item
	FindActiveItem(ctx context.Context, id string) (*models.StoreItem, error)

	// CreateItem creates a store item
	CreateItem(ctx context.Context, item *models.StoreItem) error

	// Purchase debits the user and records the purchase atomically. It returns
	// ErrInsufficientBalance when the balance does not cover the cost.
	Purchase(ctx context.Context, userID string, item *models.StoreItem) (*models.Purchase, int64, error)

	// ListPurchases lists a user's purchases, newest first
	ListPurchases(ctx context.Context, userID string) ([]models.Purchase, error)
}

// Stats is the platform summary
type Stats struct {
	Users          int64
	Projects       int64
	Tasks          int64
	CompletedTasks int64
	TotalPoints    int64
}

// StatsRepository defines the interface for aggregate queries
type StatsRepository interface {
	Summary(ctx context.Context) (*Stats, error)
}
