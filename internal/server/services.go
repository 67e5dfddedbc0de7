package server

import (
	"github.com/yukikurage/taskquest-api/internal/auth"
	"github.com/yukikurage/taskquest-api/internal/identity"
	"github.com/yukikurage/taskquest-api/internal/mailer"
	"github.com/yukikurage/taskquest-api/internal/metrics"
	"github.com/yukikurage/taskquest-api/internal/repository"
	"github.com/yukikurage/taskquest-api/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services bundles the business services behind the HTTP API.
type Services struct {
	Auth        *services.AuthService
	Identity    *services.IdentityService
	Users       *services.UserService
	Projects    *services.ProjectService
	Tasks       *services.TaskService
	Leaderboard *services.LeaderboardService
	Store       *services.StoreService
	Stats       *services.StatsService
	Streaks     *services.StreakService
	AI          *services.AIService
}

// ServiceDeps are the collaborators NewServices does not build itself.
type ServiceDeps struct {
	Tokens   *auth.TokenManager
	Mailer   mailer.Mailer
	Provider identity.Provider
	AI       *services.AIService
	Metrics  *metrics.Metrics
	ResetURL string
	Log      *zap.Logger
}

// NewServices wires repositories and services on top of db.
func NewServices(db *gorm.DB, deps ServiceDeps) *Services {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	userRepo := repository.NewUserRepository(db)
	tierRepo := repository.NewTierRepository(db)
	projects := services.NewProjectService(repository.NewProjectRepository(db))

	tasks := services.NewTaskService(repository.NewTaskRepository(db), userRepo, tierRepo, projects, log)
	tasks.UseMetrics(deps.Metrics)

	store := services.NewStoreService(repository.NewStoreRepository(db), log)
	store.UseMetrics(deps.Metrics)

	ai := deps.AI
	if ai == nil {
		ai = services.NewAIService("")
	}

	return &Services{
		Auth:        services.NewAuthService(userRepo, tierRepo, deps.Tokens, deps.Mailer, deps.ResetURL, log),
		Identity:    services.NewIdentityService(userRepo, tierRepo, deps.Tokens, deps.Provider, log),
		Users:       services.NewUserService(userRepo, tierRepo),
		Projects:    projects,
		Tasks:       tasks,
		Leaderboard: services.NewLeaderboardService(repository.NewLeaderboardRepository(db), projects),
		Store:       store,
		Stats:       services.NewStatsService(repository.NewStatsRepository(db)),
		Streaks:     services.NewStreakService(userRepo, log),
		AI:          ai,
	}
}
