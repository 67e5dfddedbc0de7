package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskquest-api/internal/constants"
	apierrors "github.com/yukikurage/taskquest-api/internal/errors"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/services"
)

// RequireProjectAccess checks that the caller is a member of the project in
// the :projectId path parameter, or an ADMIN. Run it after the URI has been
// validated.
func RequireProjectAccess(projects *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		access, err := projects.Access(c.Request.Context(), c.Param("projectId"), MustAuth(c))
		if err != nil {
			apierrors.Respond(c, err)
			return
		}

		c.Set(constants.ContextKeyProject, access)
		c.Next()
	}
}

// RequireProjectOwner allows only the project owner or an ADMIN. It must run
// after RequireProjectAccess.
func RequireProjectOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !MustProjectAccess(c).IsOwner() {
			apierrors.Respond(c, services.ErrNotProjectOwner)
			return
		}
		c.Next()
	}
}

// MustProjectAccess returns the access stored by RequireProjectAccess.
func MustProjectAccess(c *gin.Context) *services.ProjectAccess {
	value, exists := c.Get(constants.ContextKeyProject)
	if !exists {
		panic("middleware: project access not loaded for this route")
	}
	return value.(*services.ProjectAccess)
}

// RequireTaskAccess loads the task in the :taskId path parameter and checks
// the caller may access its project.
func RequireTaskAccess(tasks *services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		task, access, err := tasks.AuthorizeTask(c.Request.Context(), c.Param("taskId"), MustAuth(c))
		if err != nil {
			apierrors.Respond(c, err)
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Set(constants.ContextKeyProject, access)
		c.Next()
	}
}

// MustTask returns the task stored by RequireTaskAccess.
func MustTask(c *gin.Context) *models.Task {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		panic("middleware: task not loaded for this route")
	}
	return value.(*models.Task)
}
