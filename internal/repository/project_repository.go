package repository

import (
	"context"

	"github.com/yukikurage/taskquest-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a project and the owner's membership in one transaction
func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project, owner *models.ProjectMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Members", "Columns").Create(project).Error; err != nil {
			return err
		}

		owner.ProjectID = project.ID
		return tx.Omit("Project", "User").Create(owner).Error
	})
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByInviteCode finds a project by invite code
func (r *GormProjectRepository) FindByInviteCode(ctx context.Context, code string) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit("Members", "Columns").Save(project).Error
}

// Delete deletes a project and all related data in a transaction
func (r *GormProjectRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Delete all tasks in the project
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.Column{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).Delete(&models.Project{}).Error
	})
}

// AddMember adds a member to a project
func (r *GormProjectRepository) AddMember(ctx context.Context, member *models.ProjectMember) error {
	return r.db.WithContext(ctx).Omit("Project", "User").Create(member).Error
}

// RemoveMember removes a member from a project
func (r *GormProjectRepository) RemoveMember(ctx context.Context, projectID, userID string) error {
	return r.db.WithContext(ctx).Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{}).Error
}

// FindMember finds a specific project member
func (r *GormProjectRepository) FindMember(ctx context.Context, projectID, userID string) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := r.db.WithContext(ctx).Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembersByUserID lists all projects a user is a member of
func (r *GormProjectRepository) ListMembersByUserID(ctx context.Context, userID string) ([]models.ProjectMember, error) {
	var memberships []models.ProjectMember
	if err := r.db.WithContext(ctx).
		Joins("Project").
		Where("project_members.user_id = ?", userID).
		Order("project_members.joined_at ASC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListMembers lists all members of a project
func (r *GormProjectRepository) ListMembers(ctx context.Context, projectID string) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	if err := r.db.WithContext(ctx).Preload("User").
		Where("project_id = ?", projectID).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// CreateColumn adds a kanban column
func (r *GormProjectRepository) CreateColumn(ctx context.Context, column *models.Column) error {
	return r.db.WithContext(ctx).Create(column).Error
}

// FindColumn finds a column of a project
func (r *GormProjectRepository) FindColumn(ctx context.Context, projectID, columnID string) (*models.Column, error) {
	var column models.Column
	if err := r.db.WithContext(ctx).Where("project_id = ? AND id = ?", projectID, columnID).
		First(&column).Error; err != nil {
		return nil, err
	}
	return &column, nil
}

// ListColumns lists the columns of a project by position
func (r *GormProjectRepository) ListColumns(ctx context.Context, projectID string) ([]models.Column, error) {
	var columns []models.Column
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).
		Order("position ASC, created_at ASC").
		Find(&columns).Error; err != nil {
		return nil, err
	}
	return columns, nil
}
