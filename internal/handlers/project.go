package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskquest-api/internal/dto"
	apierrors "github.com/yukikurage/taskquest-api/internal/errors"
	"github.com/yukikurage/taskquest-api/internal/middleware"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/services"
	"github.com/yukikurage/taskquest-api/internal/validation"
)

// ProjectHandler serves projects, their members and board columns.
type ProjectHandler struct {
	projectService *services.ProjectService
	aiService      *services.AIService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService, aiService *services.AIService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		aiService:      aiService,
	}
}

// CreateProject creates a project owned by the caller.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	req := validation.BodyFrom[dto.CreateProjectRequest](c)

	project, err := h.projectService.CreateProject(c.Request.Context(), services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     middleware.MustAuth(c).UserID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ProjectWithRoleDTO{
		ProjectDTO: dto.ToProjectDTO(*project, true),
		Role:       models.ProjectRoleOwner,
	})
}

// ListProjects returns the projects the caller belongs to.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	memberships, err := h.projectService.ListProjectsForUser(c.Request.Context(), middleware.MustAuth(c).UserID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	projects := make([]dto.ProjectWithRoleDTO, len(memberships))
	for i, member := range memberships {
		projects[i] = dto.ToProjectWithRoleDTO(member)
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// JoinProject adds the caller to the project owning the invite code.
func (h *ProjectHandler) JoinProject(c *gin.Context) {
	req := validation.BodyFrom[dto.JoinProjectRequest](c)

	project, err := h.projectService.JoinProjectByInvite(c.Request.Context(), middleware.MustAuth(c).UserID, req.InviteCode)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProjectWithRoleDTO{
		ProjectDTO: dto.ToProjectDTO(*project, false),
		Role:       models.ProjectRoleMember,
	})
}

// GetProject returns a project with members and columns.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	access := middleware.MustProjectAccess(c)

	detail, err := h.projectService.GetProjectDetail(c.Request.Context(), access.Project.ID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	yourRole := access.Role()
	if access.Admin && yourRole == "" {
		yourRole = models.ProjectRoleOwner
	}
	c.JSON(http.StatusOK, dto.ToProjectDetailDTO(*detail.Project, detail.Members, detail.Columns, yourRole))
}

// UpdateProject renames or redescribes a project.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	access := middleware.MustProjectAccess(c)
	req := validation.BodyFrom[dto.UpdateProjectRequest](c)

	project, err := h.projectService.UpdateProject(c.Request.Context(), access.Project.ID, req.Name, req.Description)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project, true))
}

// DeleteProject removes a project with its tasks.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	access := middleware.MustProjectAccess(c)

	if err := h.projectService.DeleteProject(c.Request.Context(), access.Project.ID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Project deleted successfully"})
}

// RegenerateInviteCode replaces the project's invite code.
func (h *ProjectHandler) RegenerateInviteCode(c *gin.Context) {
	access := middleware.MustProjectAccess(c)

	project, err := h.projectService.RegenerateInviteCode(c.Request.Context(), access.Project.ID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project, true))
}

// RemoveMember removes a member from the project.
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	uri := validation.URIFrom[dto.ProjectMemberURI](c)

	if err := h.projectService.RemoveMember(c.Request.Context(), uri.ProjectID, middleware.MustAuth(c).UserID, uri.UserID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Member removed successfully"})
}

// ListColumns returns the board columns in order.
func (h *ProjectHandler) ListColumns(c *gin.Context) {
	columns, err := h.projectService.ListColumns(c.Request.Context(), middleware.MustProjectAccess(c).Project.ID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"columns": dto.ToColumnDTOs(columns)})
}

// CreateColumn adds a board column.
func (h *ProjectHandler) CreateColumn(c *gin.Context) {
	req := validation.BodyFrom[dto.CreateColumnRequest](c)

	column, err := h.projectService.CreateColumn(c.Request.Context(), middleware.MustProjectAccess(c).Project.ID, req.Name, req.Position)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToColumnDTO(*column))
}

// GenerateTasks drafts tasks from free text. Nothing is persisted.
func (h *ProjectHandler) GenerateTasks(c *gin.Context) {
	req := validation.BodyFrom[dto.GenerateTasksRequest](c)

	generated, err := h.aiService.GenerateTasksFromText(c.Request.Context(), req.Prompt)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	tasks := make([]dto.GeneratedTaskDTO, len(generated))
	for i, task := range generated {
		tasks[i] = dto.GeneratedTaskDTO{
			Title:            task.Title,
			Description:      task.Description,
			Difficulty:       task.Difficulty,
			EstimatedMinutes: task.EstimatedMinutes,
			DueDate:          task.DueDate,
		}
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}
