package dto

import (
	"time"

	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/utils"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Difficulty       int               `json:"difficulty"`
	EstimatedMinutes int               `json:"estimated_minutes"`
	Status           models.TaskStatus `json:"status"`
	ProjectID        string            `json:"project_id"`
	CreatorID        string            `json:"creator_id"`
	AssigneeID       *string           `json:"assignee_id"`
	ColumnID         *string           `json:"column_id"`
	RequiredTierID   *string           `json:"required_tier_id"`
	DueDate          *time.Time        `json:"due_date"`
	Tags             []string          `json:"tags"`
	IsExternalDemand bool              `json:"is_external_demand"`
	CompletedAt      *time.Time        `json:"completed_at"`
	PointsAwarded    int64             `json:"points_awarded"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	Creator          *UserDTO          `json:"creator,omitempty"`
	Assignee         *UserDTO          `json:"assignee,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// CreateTaskRequest is the body of POST /tasks
type CreateTaskRequest struct {
	Title            string     `json:"title" binding:"required,notblank,max=200"`
	Description      string     `json:"description" binding:"omitempty,max=5000"`
	Difficulty       int        `json:"difficulty" binding:"omitempty,min=1,max=10"`
	EstimatedMinutes int        `json:"estimated_minutes" binding:"omitempty,min=0,max=100000"`
	Status           string     `json:"status" binding:"omitempty,task_status"`
	ProjectID        string     `json:"project_id" binding:"required,uuid"`
	AssigneeID       *string    `json:"assignee_id" binding:"omitempty,uuid"`
	ColumnID         *string    `json:"column_id" binding:"omitempty,uuid"`
	RequiredTierID   *string    `json:"required_tier_id" binding:"omitempty,uuid"`
	DueDate          *time.Time `json:"due_date"`
	Tags             []string   `json:"tags" binding:"omitempty,max=20,dive,notblank,max=50"`
	IsExternalDemand bool       `json:"is_external_demand"`
}

// UpdateTaskRequest is the body of PATCH /tasks/:taskId. Absent fields are
// left untouched; the clear flags reset nullable fields.
type UpdateTaskRequest struct {
	Title            *string    `json:"title" binding:"omitempty,notblank,max=200"`
	Description      *string    `json:"description" binding:"omitempty,max=5000"`
	Difficulty       *int       `json:"difficulty" binding:"omitempty,min=1,max=10"`
	EstimatedMinutes *int       `json:"estimated_minutes" binding:"omitempty,min=0,max=100000"`
	Status           *string    `json:"status" binding:"omitempty,task_status"`
	AssigneeID       *string    `json:"assignee_id" binding:"omitempty,uuid"`
	ClearAssignee    bool       `json:"clear_assignee"`
	ColumnID         *string    `json:"column_id" binding:"omitempty,uuid"`
	RequiredTierID   *string    `json:"required_tier_id" binding:"omitempty,uuid"`
	DueDate          *time.Time `json:"due_date"`
	ClearDueDate     bool       `json:"clear_due_date"`
	Tags             *[]string  `json:"tags" binding:"omitempty,max=20,dive,notblank,max=50"`
	IsExternalDemand *bool      `json:"is_external_demand"`
}

// MoveTaskRequest is the body of POST /tasks/:taskId/move
type MoveTaskRequest struct {
	Status   string  `json:"status" binding:"required,task_status"`
	ColumnID *string `json:"column_id" binding:"omitempty,uuid"`
}

// ListTasksQuery filters GET /tasks
type ListTasksQuery struct {
	ProjectID string `form:"project_id" binding:"required,uuid"`
	Status    string `form:"status" binding:"omitempty,task_status"`
}

// TaskURI binds the :taskId path parameter
type TaskURI struct {
	TaskID string `uri:"taskId" binding:"required,uuid"`
}

// GenerateTasksRequest is the body of POST /projects/:projectId/tasks/generate
type GenerateTasksRequest struct {
	Prompt string `json:"prompt" binding:"required,notblank,max=4000"`
}

// GeneratedTaskDTO is a task drafted by the assistant, not yet persisted
type GeneratedTaskDTO struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Difficulty       int        `json:"difficulty"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	DueDate          *time.Time `json:"due_date"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	tags := []string(task.Tags)
	if tags == nil {
		tags = []string{}
	}

	dto := TaskDTO{
		ID:               task.ID,
		Title:            task.Title,
		Description:      task.Description,
		Difficulty:       task.Difficulty,
		EstimatedMinutes: task.EstimatedMinutes,
		Status:           task.Status,
		ProjectID:        task.ProjectID,
		CreatorID:        task.CreatorID,
		AssigneeID:       task.AssigneeID,
		ColumnID:         task.ColumnID,
		RequiredTierID:   task.RequiredTierID,
		DueDate:          task.DueDate,
		Tags:             tags,
		IsExternalDemand: task.IsExternalDemand,
		CompletedAt:      task.CompletedAt,
		PointsAwarded:    task.PointsAwarded,
		CreatedAt:        task.CreatedAt,
		UpdatedAt:        task.UpdatedAt,
	}

	// Include creator if preloaded
	if task.Creator.ID != "" {
		creator := ToUserDTO(task.Creator)
		dto.Creator = &creator
	}

	// Include assignee if preloaded
	if task.Assignee != nil && task.Assignee.ID != "" {
		assignee := ToUserDTO(*task.Assignee)
		dto.Assignee = &assignee
	}

	return dto
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, limit int, total int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks:      items,
		Pagination: utils.NewPaginationResponse(page, limit, total),
	}
}
