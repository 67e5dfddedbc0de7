package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yukikurage/taskquest-api/internal/identity"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/repository"
	"github.com/yukikurage/taskquest-api/internal/utils"
	"gorm.io/gorm"
)

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projectRepo repository.ProjectRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
	}
}

// ProjectAccess is a project together with the caller's membership. Member is
// nil when an ADMIN accesses a project they do not belong to.
type ProjectAccess struct {
	Project *models.Project
	Member  *models.ProjectMember
	Admin   bool
}

// IsOwner reports whether the caller may administer the project.
func (a *ProjectAccess) IsOwner() bool {
	return a.Admin || (a.Member != nil && a.Member.Role == models.ProjectRoleOwner)
}

// Role returns the caller's project role, empty for non-member admins.
func (a *ProjectAccess) Role() models.ProjectRole {
	if a.Member == nil {
		return ""
	}
	return a.Member.Role
}

// Access loads a project and checks that the caller is a member or ADMIN.
func (s *ProjectService) Access(ctx context.Context, projectID string, caller *identity.AuthContext) (*ProjectAccess, error) {
	project, err := s.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	access := &ProjectAccess{Project: project, Admin: caller.IsAdmin()}

	member, err := s.projectRepo.FindMember(ctx, projectID, caller.UserID)
	switch {
	case err == nil:
		access.Member = member
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, wrapInternal("Failed to verify membership", err)
	case !access.Admin:
		return nil, ErrNotProjectMember
	}

	return access, nil
}

// IsMember reports whether userID belongs to the project.
func (s *ProjectService) IsMember(ctx context.Context, projectID, userID string) (bool, error) {
	if _, err := s.projectRepo.FindMember(ctx, projectID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, wrapInternal("Failed to verify membership", err)
	}
	return true, nil
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	OwnerID     string
}

// CreateProject creates a new project and assigns the owner.
func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGeneration.WithCause(err)
	}

	project := &models.Project{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		InviteCode:  inviteCode,
		OwnerID:     input.OwnerID,
	}

	owner := &models.ProjectMember{
		UserID:   input.OwnerID,
		Role:     models.ProjectRoleOwner,
		JoinedAt: time.Now(),
	}

	if err := s.projectRepo.Create(ctx, project, owner); err != nil {
		return nil, wrapInternal("Failed to create project", err)
	}

	return project, nil
}

// ListProjectsForUser returns the projects the user belongs to.
func (s *ProjectService) ListProjectsForUser(ctx context.Context, userID string) ([]models.ProjectMember, error) {
	memberships, err := s.projectRepo.ListMembersByUserID(ctx, userID)
	if err != nil {
		return nil, wrapInternal("Failed to list projects", err)
	}
	return memberships, nil
}

// ProjectDetail is a project with its members and board columns.
type ProjectDetail struct {
	Project *models.Project
	Members []models.ProjectMember
	Columns []models.Column
}

// GetProjectDetail returns a project with all of its members and columns.
func (s *ProjectService) GetProjectDetail(ctx context.Context, projectID string) (*ProjectDetail, error) {
	project, err := s.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	members, err := s.projectRepo.ListMembers(ctx, projectID)
	if err != nil {
		return nil, wrapInternal("Failed to list project members", err)
	}

	columns, err := s.projectRepo.ListColumns(ctx, projectID)
	if err != nil {
		return nil, wrapInternal("Failed to list columns", err)
	}

	return &ProjectDetail{Project: project, Members: members, Columns: columns}, nil
}

// UpdateProject changes a project's name and/or description.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID string, name, description *string) (*models.Project, error) {
	project, err := s.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if name != nil {
		project.Name = strings.TrimSpace(*name)
	}
	if description != nil {
		project.Description = strings.TrimSpace(*description)
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, wrapInternal("Failed to update project", err)
	}

	return project, nil
}

// DeleteProject removes a project with its tasks, columns and memberships.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID string) error {
	if _, err := s.findProject(ctx, projectID); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return wrapInternal("Failed to delete project", err)
	}

	return nil
}

// JoinProjectByInvite adds a user to a project via invite code.
func (s *ProjectService) JoinProjectByInvite(ctx context.Context, userID, inviteCode string) (*models.Project, error) {
	project, err := s.projectRepo.FindByInviteCode(ctx, utils.NormalizeInviteCode(inviteCode))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInviteCode
		}
		return nil, wrapInternal("Failed to find project by invite code", err)
	}

	if _, err := s.projectRepo.FindMember(ctx, project.ID, userID); err == nil {
		return nil, ErrAlreadyProjectMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrapInternal("Failed to verify membership", err)
	}

	member := &models.ProjectMember{
		ProjectID: project.ID,
		UserID:    userID,
		Role:      models.ProjectRoleMember,
		JoinedAt:  time.Now(),
	}

	if err := s.projectRepo.AddMember(ctx, member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyProjectMember
		}
		return nil, wrapInternal("Failed to add member to project", err)
	}

	return project, nil
}

// RegenerateInviteCode generates a new invite code for the project.
func (s *ProjectService) RegenerateInviteCode(ctx context.Context, projectID string) (*models.Project, error) {
	project, err := s.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	code, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGeneration.WithCause(err)
	}

	project.InviteCode = code
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, wrapInternal("Failed to update invite code", err)
	}

	return project, nil
}

// RemoveMember removes a member from the project.
func (s *ProjectService) RemoveMember(ctx context.Context, projectID, actorID, targetID string) error {
	if targetID == actorID {
		return ErrCannotRemoveYourself
	}

	member, err := s.projectRepo.FindMember(ctx, projectID, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectMemberNotFound
		}
		return wrapInternal("Failed to find project member", err)
	}
	if member.Role == models.ProjectRoleOwner {
		return ErrCannotRemoveOwner
	}

	if err := s.projectRepo.RemoveMember(ctx, projectID, targetID); err != nil {
		return wrapInternal("Failed to remove member", err)
	}

	return nil
}

// ListColumns returns the board columns by position.
func (s *ProjectService) ListColumns(ctx context.Context, projectID string) ([]models.Column, error) {
	columns, err := s.projectRepo.ListColumns(ctx, projectID)
	if err != nil {
		return nil, wrapInternal("Failed to list columns", err)
	}
	return columns, nil
}

// CreateColumn appends a column, or inserts it at position when given.
func (s *ProjectService) CreateColumn(ctx context.Context, projectID, name string, position *int) (*models.Column, error) {
	column := &models.Column{
		ProjectID: projectID,
		Name:      strings.TrimSpace(name),
	}

	if position != nil {
		column.Position = *position
	} else {
		columns, err := s.projectRepo.ListColumns(ctx, projectID)
		if err != nil {
			return nil, wrapInternal("Failed to list columns", err)
		}
		column.Position = len(columns)
	}

	if err := s.projectRepo.CreateColumn(ctx, column); err != nil {
		return nil, wrapInternal("Failed to create column", err)
	}
	return column, nil
}

// FindColumn checks that a column belongs to the project.
func (s *ProjectService) FindColumn(ctx context.Context, projectID, columnID string) (*models.Column, error) {
	column, err := s.projectRepo.FindColumn(ctx, projectID, columnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrColumnNotFound
		}
		return nil, wrapInternal("Failed to find column", err)
	}
	return column, nil
}

// Exists reports whether the project exists.
func (s *ProjectService) Exists(ctx context.Context, projectID string) error {
	_, err := s.findProject(ctx, projectID)
	return err
}

func (s *ProjectService) findProject(ctx context.Context, projectID string) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, wrapInternal("Failed to find project", err)
	}
	return project, nil
}
