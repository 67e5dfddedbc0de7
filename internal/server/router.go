// Package server assembles the HTTP API.
package server

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskquest-api/internal/constants"
	"github.com/yukikurage/taskquest-api/internal/dto"
	"github.com/yukikurage/taskquest-api/internal/handlers"
	"github.com/yukikurage/taskquest-api/internal/metrics"
	"github.com/yukikurage/taskquest-api/internal/middleware"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/validation"
	"go.uber.org/zap"
)

// Options configure the HTTP layer around the services.
type Options struct {
	Log          *zap.Logger
	Metrics      *metrics.Metrics
	SessionStore sessions.Store
	CORSOrigins  []string
	AuthLimiter  *middleware.RateLimiter
}

// NewRouter builds the gin engine with every API route.
func NewRouter(svc *Services, opts Options) *gin.Engine {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
	}
	r.Use(middleware.CORS(opts.CORSOrigins))
	if opts.SessionStore != nil {
		r.Use(sessions.Sessions(constants.SessionCookieName, opts.SessionStore))
	}

	authHandler := handlers.NewAuthHandler(svc.Auth, svc.Users)
	userHandler := handlers.NewUserHandler(svc.Users)
	leaderboardHandler := handlers.NewLeaderboardHandler(svc.Leaderboard)
	projectHandler := handlers.NewProjectHandler(svc.Projects, svc.AI)
	taskHandler := handlers.NewTaskHandler(svc.Tasks)
	storeHandler := handlers.NewStoreHandler(svc.Store)
	adminHandler := handlers.NewAdminHandler(svc.Stats, svc.Streaks)

	requireAuth := middleware.RequireAuth(svc.Identity)
	requireAdmin := middleware.RequireRole(models.RoleAdmin)
	projectAccess := middleware.RequireProjectAccess(svc.Projects)
	projectOwner := middleware.RequireProjectOwner()
	taskAccess := middleware.RequireTaskAccess(svc.Tasks)
	projectURI := validation.URI[dto.ProjectURI]()
	taskURI := validation.URI[dto.TaskURI]()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "TaskQuest API is running",
		})
	})
	if opts.Metrics != nil {
		r.GET("/metrics", opts.Metrics.Handler())
	}

	api := r.Group("/api")
	{
		api.GET("/stats", adminHandler.Stats)

		// Auth routes (public)
		authRoutes := api.Group("/auth")
		if opts.AuthLimiter != nil {
			authRoutes.Use(opts.AuthLimiter.Handler())
		}
		{
			authRoutes.POST("/register", validation.Body[dto.RegisterRequest](), authHandler.Register)
			authRoutes.POST("/login", validation.Body[dto.LoginRequest](), authHandler.Login)
			authRoutes.POST("/refresh", authHandler.Refresh)
			authRoutes.POST("/logout", authHandler.Logout)
			authRoutes.POST("/reset-password", validation.Body[dto.ResetPasswordRequest](), authHandler.RequestPasswordReset)
			authRoutes.POST("/reset-password/confirm", validation.Body[dto.ConfirmResetPasswordRequest](), authHandler.ConfirmPasswordReset)
			authRoutes.GET("/me", requireAuth, authHandler.Me)
		}

		users := api.Group("/users", requireAuth)
		{
			users.GET("/me", userHandler.GetMe)
			users.PATCH("/me", validation.Body[dto.UpdateProfileRequest](), userHandler.UpdateMe)
		}

		leaderboard := api.Group("/leaderboard", requireAuth)
		{
			leaderboard.GET("/global", leaderboardHandler.Global)
			leaderboard.GET("/project/:projectId", projectURI, leaderboardHandler.Project)
			leaderboard.GET("/weekly", leaderboardHandler.Weekly)
		}

		// Project routes (protected)
		projects := api.Group("/projects", requireAuth)
		{
			projects.POST("", validation.Body[dto.CreateProjectRequest](), projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.POST("/join", validation.Body[dto.JoinProjectRequest](), projectHandler.JoinProject)

			project := projects.Group("/:projectId", projectURI, projectAccess)
			{
				project.GET("", projectHandler.GetProject)
				project.PATCH("", projectOwner, validation.Body[dto.UpdateProjectRequest](), projectHandler.UpdateProject)
				project.DELETE("", projectOwner, projectHandler.DeleteProject)
				project.POST("/regenerate-code", projectOwner, projectHandler.RegenerateInviteCode)
				project.DELETE("/members/:userId", projectOwner, validation.URI[dto.ProjectMemberURI](), projectHandler.RemoveMember)
				project.GET("/columns", projectHandler.ListColumns)
				project.POST("/columns", validation.Body[dto.CreateColumnRequest](), projectHandler.CreateColumn)
				project.POST("/tasks/generate", validation.Body[dto.GenerateTasksRequest](), projectHandler.GenerateTasks)
			}
		}

		// Task routes (protected)
		tasks := api.Group("/tasks", requireAuth)
		{
			tasks.GET("", validation.Query[dto.ListTasksQuery](), taskHandler.ListTasks)
			tasks.POST("", validation.Body[dto.CreateTaskRequest](), taskHandler.CreateTask)

			task := tasks.Group("/:taskId", taskURI, taskAccess)
			{
				task.GET("", taskHandler.GetTask)
				task.PATCH("", validation.Body[dto.UpdateTaskRequest](), taskHandler.UpdateTask)
				task.DELETE("", taskHandler.DeleteTask)
				task.POST("/move", validation.Body[dto.MoveTaskRequest](), taskHandler.MoveTask)
			}
		}

		store := api.Group("/store", requireAuth)
		{
			store.GET("/items", storeHandler.ListItems)
			store.POST("/items", requireAdmin, validation.Body[dto.CreateStoreItemRequest](), storeHandler.CreateItem)
			store.POST("/buy", validation.Body[dto.BuyItemRequest](), storeHandler.Buy)
			store.GET("/purchases", storeHandler.ListPurchases)
		}

		admin := api.Group("/admin", requireAuth, requireAdmin)
		{
			admin.POST("/reset-streaks", adminHandler.ResetStreaks)
			admin.PATCH("/users/:userId", validation.URI[dto.UserURI](), validation.Body[dto.UpdateUserRequest](), userHandler.AdminUpdateUser)
		}
	}

	return r
}
