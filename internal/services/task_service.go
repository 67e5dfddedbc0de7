package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yukikurage/taskquest-api/internal/constants"
	"github.com/yukikurage/taskquest-api/internal/identity"
	"github.com/yukikurage/taskquest-api/internal/logger"
	"github.com/yukikurage/taskquest-api/internal/metrics"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/repository"
	"github.com/yukikurage/taskquest-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TaskService provides business logic for task operations.
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	tierRepo repository.TierRepository
	projects *ProjectService
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	tierRepo repository.TierRepository,
	projects *ProjectService,
	log *zap.Logger,
) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		tierRepo: tierRepo,
		projects: projects,
		log:      log,
		now:      time.Now,
	}
}

// UseMetrics reports awarded points to m.
func (s *TaskService) UseMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// CompletionPoints is the award for completing task: difficulty x10, and
// half as much again for external demands.
func CompletionPoints(task *models.Task) int64 {
	points := int64(task.Difficulty) * constants.PointsPerDifficulty
	if task.IsExternalDemand {
		points = points * constants.ExternalDemandBonusNum / constants.ExternalDemandBonusDen
	}
	return points
}

// CreateTaskInput represents parameters to create a task.
type CreateTaskInput struct {
	Title            string
	Description      string
	Difficulty       int
	EstimatedMinutes int
	Status           models.TaskStatus
	ProjectID        string
	AssigneeID       *string
	ColumnID         *string
	RequiredTierID   *string
	DueDate          *time.Time
	Tags             []string
	IsExternalDemand bool
}

// CreateTask creates a task in a project the caller belongs to.
func (s *TaskService) CreateTask(ctx context.Context, caller *identity.AuthContext, input CreateTaskInput) (*models.Task, error) {
	if _, err := s.projects.Access(ctx, input.ProjectID, caller); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	difficulty := input.Difficulty
	if difficulty == 0 {
		difficulty = constants.MinTaskDifficulty
	}

	task := &models.Task{
		Title:            strings.TrimSpace(input.Title),
		Description:      input.Description,
		Difficulty:       difficulty,
		EstimatedMinutes: input.EstimatedMinutes,
		Status:           status,
		ProjectID:        input.ProjectID,
		CreatorID:        caller.UserID,
		AssigneeID:       input.AssigneeID,
		ColumnID:         input.ColumnID,
		RequiredTierID:   input.RequiredTierID,
		DueDate:          input.DueDate,
		Tags:             datatypes.JSONSlice[string](input.Tags),
		IsExternalDemand: input.IsExternalDemand,
	}

	if err := s.checkReferences(ctx, task); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, wrapInternal("Failed to create task", err)
	}

	if task.Status == models.TaskStatusDone {
		if err := s.save(ctx, task); err != nil {
			return nil, err
		}
	}

	return s.GetTask(ctx, task.ID)
}

// GetTask returns a task with creator and assignee.
func (s *TaskService) GetTask(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id, "Creator", "Assignee")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, wrapInternal("Failed to find task", err)
	}
	return task, nil
}

// AuthorizeTask loads a task and checks the caller may access its project.
func (s *TaskService) AuthorizeTask(ctx context.Context, id string, caller *identity.AuthContext) (*models.Task, *ProjectAccess, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	access, err := s.projects.Access(ctx, task.ProjectID, caller)
	if err != nil {
		return nil, nil, err
	}

	return task, access, nil
}

// ListTasks returns a page of a project's tasks, newest first.
func (s *TaskService) ListTasks(ctx context.Context, caller *identity.AuthContext, projectID string, status *models.TaskStatus, params utils.PaginationParams) ([]models.Task, int64, error) {
	if _, err := s.projects.Access(ctx, projectID, caller); err != nil {
		return nil, 0, err
	}

	tasks, total, err := s.taskRepo.List(ctx, repository.TaskFilter{
		ProjectID: projectID,
		Status:    status,
		Offset:    params.Offset,
		Limit:     params.Limit,
	})
	if err != nil {
		return nil, 0, wrapInternal("Failed to list tasks", err)
	}
	return tasks, total, nil
}

// UpdateTaskInput holds a partial task update. Nil fields are unchanged.
type UpdateTaskInput struct {
	Title            *string
	Description      *string
	Difficulty       *int
	EstimatedMinutes *int
	Status           *models.TaskStatus
	AssigneeID       *string
	ClearAssignee    bool
	ColumnID         *string
	RequiredTierID   *string
	DueDate          *time.Time
	ClearDueDate     bool
	Tags             *[]string
	IsExternalDemand *bool
}

// UpdateTask applies a partial update.
func (s *TaskService) UpdateTask(ctx context.Context, task *models.Task, input UpdateTaskInput) (*models.Task, error) {
	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Difficulty != nil {
		task.Difficulty = *input.Difficulty
	}
	if input.EstimatedMinutes != nil {
		task.EstimatedMinutes = *input.EstimatedMinutes
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.ClearAssignee {
		task.AssigneeID = nil
	} else if input.AssigneeID != nil {
		task.AssigneeID = input.AssigneeID
	}
	if input.ColumnID != nil {
		task.ColumnID = input.ColumnID
	}
	if input.RequiredTierID != nil {
		task.RequiredTierID = input.RequiredTierID
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Tags != nil {
		task.Tags = datatypes.JSONSlice[string](*input.Tags)
	}
	if input.IsExternalDemand != nil {
		task.IsExternalDemand = *input.IsExternalDemand
	}

	if err := s.checkReferences(ctx, task); err != nil {
		return nil, err
	}
	if err := s.save(ctx, task); err != nil {
		return nil, err
	}

	return s.GetTask(ctx, task.ID)
}

// MoveTask changes only the status (and optionally the column). Any status
// may follow any other.
func (s *TaskService) MoveTask(ctx context.Context, task *models.Task, status models.TaskStatus, columnID *string) (*models.Task, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	task.Status = status
	if columnID != nil {
		if _, err := s.projects.FindColumn(ctx, task.ProjectID, *columnID); err != nil {
			return nil, err
		}
		task.ColumnID = columnID
	}

	if err := s.save(ctx, task); err != nil {
		return nil, err
	}

	return s.GetTask(ctx, task.ID)
}

// DeleteTask removes a task. Only its creator, the project owner or an ADMIN
// may delete it.
func (s *TaskService) DeleteTask(ctx context.Context, task *models.Task, access *ProjectAccess, callerID string) error {
	if task.CreatorID != callerID && !access.IsOwner() {
		return ErrNotTaskCreator
	}

	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		return wrapInternal("Failed to delete task", err)
	}
	return nil
}

// save persists task, crediting the completion award when it reaches DONE
// for the first time.
func (s *TaskService) save(ctx context.Context, task *models.Task) error {
	if task.Status != models.TaskStatusDone || task.CompletedAt != nil {
		if err := s.taskRepo.Update(ctx, task); err != nil {
			return wrapInternal("Failed to update task", err)
		}
		return nil
	}

	recipient := task.CreatorID
	if task.AssigneeID != nil {
		recipient = *task.AssigneeID
	}

	award := repository.Award{
		UserID: recipient,
		Amount: CompletionPoints(task),
		Reason: constants.PointReasonTaskComplete,
		At:     s.now(),
	}

	awarded, err := s.taskRepo.UpdateWithAward(ctx, task, award)
	if err != nil {
		return wrapInternal("Failed to complete task", err)
	}
	if awarded {
		s.metrics.RecordPointsAwarded(award.Amount)
		logger.FromContext(ctx, s.log).Info("task completed",
			zap.String("task_id", task.ID),
			zap.String("user_id", recipient),
			zap.Int64("points", award.Amount),
		)
	}
	return nil
}

// checkReferences validates the column, required tier and assignee of task
// against its project.
func (s *TaskService) checkReferences(ctx context.Context, task *models.Task) error {
	if task.ColumnID != nil {
		if _, err := s.projects.FindColumn(ctx, task.ProjectID, *task.ColumnID); err != nil {
			return err
		}
	}

	var required *models.Tier
	if task.RequiredTierID != nil {
		tier, err := s.tierRepo.FindByID(ctx, *task.RequiredTierID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTierNotFound
			}
			return wrapInternal("Failed to find tier", err)
		}
		required = tier
	}

	if task.AssigneeID == nil {
		return nil
	}

	member, err := s.projects.IsMember(ctx, task.ProjectID, *task.AssigneeID)
	if err != nil {
		return err
	}
	if !member {
		return ErrAssigneeNotMember
	}

	if required != nil {
		assignee, err := s.userRepo.FindByID(ctx, *task.AssigneeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssigneeNotMember
			}
			return wrapInternal("Failed to find assignee", err)
		}
		if assignee.Tier == nil || assignee.Tier.Order < required.Order {
			return ErrAssigneeTierTooLow
		}
	}

	return nil
}
