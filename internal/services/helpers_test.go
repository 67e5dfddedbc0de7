package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/yukikurage/taskquest-api/internal/auth"
	"github.com/yukikurage/taskquest-api/internal/identity"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/repository"
	"github.com/yukikurage/taskquest-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db          *gorm.DB
	tokens      *auth.TokenManager
	mailer      *recordingMailer
	auth        *AuthService
	users       *UserService
	projects    *ProjectService
	tasks       *TaskService
	leaderboard *LeaderboardService
	store       *StoreService
	streaks     *StreakService
	userRepo    repository.UserRepository
	tierRepo    repository.TierRepository
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithDB(t, testutil.NewTestDB(t))
}

func newTestEnvWithDB(t *testing.T, db *gorm.DB) *testEnv {
	t.Helper()

	log := zap.NewNop()
	userRepo := repository.NewUserRepository(db)
	tierRepo := repository.NewTierRepository(db)
	tokens := auth.NewTokenManager("test-secret", 15*time.Minute, time.Hour, 30*time.Minute)
	m := &recordingMailer{}
	projects := NewProjectService(repository.NewProjectRepository(db))

	return &testEnv{
		db:          db,
		tokens:      tokens,
		mailer:      m,
		auth:        NewAuthService(userRepo, tierRepo, tokens, m, "https://app.test/reset", log),
		users:       NewUserService(userRepo, tierRepo),
		projects:    projects,
		tasks:       NewTaskService(repository.NewTaskRepository(db), userRepo, tierRepo, projects, log),
		leaderboard: NewLeaderboardService(repository.NewLeaderboardRepository(db), projects),
		store:       NewStoreService(repository.NewStoreRepository(db), log),
		streaks:     NewStreakService(userRepo, log),
		userRepo:    userRepo,
		tierRepo:    tierRepo,
	}
}

func callerFor(user *models.User) *identity.AuthContext {
	return &identity.AuthContext{UserID: user.ID, Email: user.Email, Role: user.Role, Source: identity.SourceLocal}
}

type sentMail struct {
	to   string
	link string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, to, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, link: link})
	return nil
}

func (m *recordingMailer) last() (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}, false
	}
	return m.sent[len(m.sent)-1], true
}
