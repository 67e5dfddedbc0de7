package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusInReview   TaskStatus = "IN_REVIEW"
	TaskStatusDone       TaskStatus = "DONE"
)

// TaskStatuses lists every valid status in board order.
var TaskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusInReview, TaskStatusDone}

// Valid reports whether s belongs to the status enum.
func (s TaskStatus) Valid() bool {
	for _, status := range TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Task struct {
	ID               string                      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title            string                      `gorm:"type:varchar(200);not null" json:"title"`
	Description      string                      `gorm:"type:text" json:"description"`
	Difficulty       int                         `gorm:"not null;default:1" json:"difficulty"`
	EstimatedMinutes int                         `gorm:"not null;default:0" json:"estimated_minutes"`
	Status           TaskStatus                  `gorm:"type:varchar(20);not null;default:'TODO';index" json:"status"`
	ProjectID        string                      `gorm:"type:varchar(36);not null;index" json:"project_id"`
	CreatorID        string                      `gorm:"type:varchar(36);not null" json:"creator_id"`
	AssigneeID       *string                     `gorm:"type:varchar(36);index" json:"assignee_id"`
	ColumnID         *string                     `gorm:"type:varchar(36)" json:"column_id"`
	RequiredTierID   *string                     `gorm:"type:varchar(36)" json:"required_tier_id"`
	DueDate          *time.Time                  `json:"due_date"`
	Tags             datatypes.JSONSlice[string] `json:"tags"`
	IsExternalDemand bool                        `gorm:"not null;default:false" json:"is_external_demand"`
	CompletedAt      *time.Time                  `json:"completed_at"`
	PointsAwarded    int64                       `gorm:"not null;default:0" json:"points_awarded"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
	DeletedAt        gorm.DeletedAt              `gorm:"index" json:"-"`

	// Relations
	Creator      User  `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Assignee     *User `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	RequiredTier *Tier `gorm:"foreignKey:RequiredTierID" json:"required_tier,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// PointEvent is one entry of the points ledger.
type PointEvent struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	ProjectID *string   `gorm:"type:varchar(36);index" json:"project_id"`
	TaskID    *string   `gorm:"type:varchar(36)" json:"task_id"`
	Amount    int64     `gorm:"not null" json:"amount"`
	Reason    string    `gorm:"type:varchar(50);not null" json:"reason"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (e *PointEvent) BeforeCreate(tx *gorm.DB) error {
	ensureID(&e.ID)
	return nil
}
