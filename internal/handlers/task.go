package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskquest-api/internal/dto"
	apierrors "github.com/yukikurage/taskquest-api/internal/errors"
	"github.com/yukikurage/taskquest-api/internal/middleware"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/services"
	"github.com/yukikurage/taskquest-api/internal/utils"
	"github.com/yukikurage/taskquest-api/internal/validation"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns a page of a project's tasks, optionally filtered by status
func (h *TaskHandler) ListTasks(c *gin.Context) {
	query := validation.QueryFrom[dto.ListTasksQuery](c)
	params := utils.GetPaginationParams(c)

	var status *models.TaskStatus
	if query.Status != "" {
		s := models.TaskStatus(query.Status)
		status = &s
	}

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), middleware.MustAuth(c), query.ProjectID, status, params)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.Limit, total))
}

// GetTask returns a specific task
// Task is already loaded with relations by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToTaskDTO(*middleware.MustTask(c)))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	req := validation.BodyFrom[dto.CreateTaskRequest](c)

	task, err := h.taskService.CreateTask(c.Request.Context(), middleware.MustAuth(c), services.CreateTaskInput{
		Title:            req.Title,
		Description:      req.Description,
		Difficulty:       req.Difficulty,
		EstimatedMinutes: req.EstimatedMinutes,
		Status:           models.TaskStatus(req.Status),
		ProjectID:        req.ProjectID,
		AssigneeID:       req.AssigneeID,
		ColumnID:         req.ColumnID,
		RequiredTierID:   req.RequiredTierID,
		DueDate:          req.DueDate,
		Tags:             req.Tags,
		IsExternalDemand: req.IsExternalDemand,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update to a task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	req := validation.BodyFrom[dto.UpdateTaskRequest](c)

	input := services.UpdateTaskInput{
		Title:            req.Title,
		Description:      req.Description,
		Difficulty:       req.Difficulty,
		EstimatedMinutes: req.EstimatedMinutes,
		AssigneeID:       req.AssigneeID,
		ClearAssignee:    req.ClearAssignee,
		ColumnID:         req.ColumnID,
		RequiredTierID:   req.RequiredTierID,
		DueDate:          req.DueDate,
		ClearDueDate:     req.ClearDueDate,
		Tags:             req.Tags,
		IsExternalDemand: req.IsExternalDemand,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), middleware.MustTask(c), input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// MoveTask changes a task's status
func (h *TaskHandler) MoveTask(c *gin.Context) {
	req := validation.BodyFrom[dto.MoveTaskRequest](c)

	task, err := h.taskService.MoveTask(c.Request.Context(), middleware.MustTask(c), models.TaskStatus(req.Status), req.ColumnID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	err := h.taskService.DeleteTask(c.Request.Context(), middleware.MustTask(c), middleware.MustProjectAccess(c), middleware.MustAuth(c).UserID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Task deleted successfully"})
}
