package repository

import (
	"context"

	"github.com/yukikurage/taskquest-api/internal/database"
	"github.com/yukikurage/taskquest-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id string, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx)

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks of a project, newest first
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.WithContext(ctx).Model(&models.Task{}).Where("tasks.project_id = ?", filter.ProjectID)

	// Apply filters
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC").Order("tasks.id ASC").
		Scopes(database.Paginate(filter.Offset, filter.Limit))

	if err := listQuery.Preload("Creator").Preload("Assignee").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update saves a task
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

// UpdateWithAward saves a completed task and credits the award exactly once.
// The completion is claimed with a conditional update so two concurrent
// completions cannot both pay out.
func (r *GormTaskRepository) UpdateWithAward(ctx context.Context, task *models.Task, award Award) (bool, error) {
	awarded := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim := tx.Model(&models.Task{}).
			Where("id = ? AND completed_at IS NULL", task.ID).
			Updates(map[string]interface{}{
				"completed_at":   award.At,
				"points_awarded": award.Amount,
			})
		if claim.Error != nil {
			return claim.Error
		}

		if claim.RowsAffected == 1 {
			awarded = true
			completedAt := award.At
			task.CompletedAt = &completedAt
			task.PointsAwarded = award.Amount

			if err := credit(tx, task, award); err != nil {
				return err
			}
		} else {
			// Completed earlier; keep the recorded completion.
			var current models.Task
			if err := tx.Select("completed_at", "points_awarded").Where("id = ?", task.ID).Take(&current).Error; err != nil {
				return err
			}
			task.CompletedAt = current.CompletedAt
			task.PointsAwarded = current.PointsAwarded
		}

		return tx.Omit(clause.Associations).Save(task).Error
	})
	if err != nil {
		return false, err
	}

	return awarded, nil
}

func credit(tx *gorm.DB, task *models.Task, award Award) error {
	var user models.User
	if err := tx.Where("id = ?", award.UserID).First(&user).Error; err != nil {
		return err
	}
	user.RecordActivity(award.At)

	if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"points":         gorm.Expr("points + ?", award.Amount),
		"balance":        gorm.Expr("balance + ?", award.Amount),
		"streak_days":    user.StreakDays,
		"last_active_at": user.LastActiveAt,
	}).Error; err != nil {
		return err
	}

	projectID := task.ProjectID
	taskID := task.ID
	return tx.Create(&models.PointEvent{
		UserID:    award.UserID,
		ProjectID: &projectID,
		TaskID:    &taskID,
		Amount:    award.Amount,
		Reason:    award.Reason,
		CreatedAt: award.At,
	}).Error
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{}).Error
}
