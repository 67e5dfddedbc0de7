package dto

import (
	"time"

	"github.com/yukikurage/taskquest-api/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	InviteCode  string    `json:"invite_code,omitempty"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProjectWithRoleDTO represents a project with the user's role
type ProjectWithRoleDTO struct {
	ProjectDTO
	Role models.ProjectRole `json:"role"`
}

// ProjectMemberDTO represents a member in a project
type ProjectMemberDTO struct {
	User     UserDTO            `json:"user"`
	Role     models.ProjectRole `json:"role"`
	JoinedAt time.Time          `json:"joined_at"`
}

// ProjectDetailDTO represents detailed project information
type ProjectDetailDTO struct {
	ProjectDTO
	Members  []ProjectMemberDTO `json:"members"`
	Columns  []ColumnDTO        `json:"columns"`
	YourRole models.ProjectRole `json:"your_role,omitempty"`
}

// ColumnDTO represents a kanban column
type ColumnDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// CreateProjectRequest is the body of POST /projects
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=255"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// UpdateProjectRequest is the body of PATCH /projects/:projectId
type UpdateProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,notblank,max=255"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// JoinProjectRequest is the body of POST /projects/join
type JoinProjectRequest struct {
	InviteCode string `json:"invite_code" binding:"required,notblank"`
}

// CreateColumnRequest is the body of POST /projects/:projectId/columns
type CreateColumnRequest struct {
	Name     string `json:"name" binding:"required,notblank,max=100"`
	Position *int   `json:"position" binding:"omitempty,min=0"`
}

// ProjectURI binds the :projectId path parameter
type ProjectURI struct {
	ProjectID string `uri:"projectId" binding:"required,uuid"`
}

// ProjectMemberURI binds :projectId and :userId
type ProjectMemberURI struct {
	ProjectID string `uri:"projectId" binding:"required,uuid"`
	UserID    string `uri:"userId" binding:"required,uuid"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project, includeInviteCode bool) ProjectDTO {
	dto := ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		OwnerID:     project.OwnerID,
		CreatedAt:   project.CreatedAt,
	}
	if includeInviteCode {
		dto.InviteCode = project.InviteCode
	}
	return dto
}

// ToProjectWithRoleDTO converts a project membership to DTO with role
func ToProjectWithRoleDTO(member models.ProjectMember) ProjectWithRoleDTO {
	return ProjectWithRoleDTO{
		ProjectDTO: ToProjectDTO(member.Project, member.Role == models.ProjectRoleOwner),
		Role:       member.Role,
	}
}

// ToProjectMemberDTO converts a member to DTO
func ToProjectMemberDTO(member models.ProjectMember) ProjectMemberDTO {
	return ProjectMemberDTO{
		User:     ToUserDTO(member.User),
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
}

// ToColumnDTO converts a Column model to ColumnDTO
func ToColumnDTO(column models.Column) ColumnDTO {
	return ColumnDTO{
		ID:       column.ID,
		Name:     column.Name,
		Position: column.Position,
	}
}

// ToColumnDTOs converts a slice of columns
func ToColumnDTOs(columns []models.Column) []ColumnDTO {
	dtos := make([]ColumnDTO, len(columns))
	for i, column := range columns {
		dtos[i] = ToColumnDTO(column)
	}
	return dtos
}

// ToProjectDetailDTO converts a project with members and columns to detailed DTO.
// The invite code is only shown to the owner.
func ToProjectDetailDTO(project models.Project, members []models.ProjectMember, columns []models.Column, yourRole models.ProjectRole) ProjectDetailDTO {
	memberDTOs := make([]ProjectMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToProjectMemberDTO(member)
	}

	return ProjectDetailDTO{
		ProjectDTO: ToProjectDTO(project, yourRole == models.ProjectRoleOwner),
		Members:    memberDTOs,
		Columns:    ToColumnDTOs(columns),
		YourRole:   yourRole,
	}
}
