package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskquest-api/internal/auth"
	"github.com/yukikurage/taskquest-api/internal/constants"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/repository"
	"github.com/yukikurage/taskquest-api/internal/services"
	"github.com/yukikurage/taskquest-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type handlerEnv struct {
	db       *gorm.DB
	tokens   *auth.TokenManager
	mailer   *capturingMailer
	auth     *services.AuthService
	identity *services.IdentityService
	users    *services.UserService
	projects *services.ProjectService
	tasks    *services.TaskService
	store    *services.StoreService
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	log := zap.NewNop()
	userRepo := repository.NewUserRepository(db)
	tierRepo := repository.NewTierRepository(db)
	tokens := auth.NewTokenManager("handler-secret", 15*time.Minute, time.Hour, 30*time.Minute)
	m := &capturingMailer{}
	projects := services.NewProjectService(repository.NewProjectRepository(db))

	return &handlerEnv{
		db:       db,
		tokens:   tokens,
		mailer:   m,
		auth:     services.NewAuthService(userRepo, tierRepo, tokens, m, "https://app.test/reset", log),
		identity: services.NewIdentityService(userRepo, tierRepo, tokens, nil, log),
		users:    services.NewUserService(userRepo, tierRepo),
		projects: projects,
		tasks:    services.NewTaskService(repository.NewTaskRepository(db), userRepo, tierRepo, projects, log),
		store:    services.NewStoreService(repository.NewStoreRepository(db), log),
	}
}

// router returns an engine with cookie sessions, ready for routes.
func (e *handlerEnv) router() *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	return r
}

func (e *handlerEnv) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()

	pair, err := e.tokens.IssuePair(auth.Subject{UserID: user.ID, Email: user.Email, Role: string(user.Role)})
	require.NoError(t, err)
	return pair.AccessToken
}

type capturingMailer struct {
	mu    sync.Mutex
	links []string
}

func (m *capturingMailer) SendPasswordReset(_ context.Context, _, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = append(m.links, link)
	return nil
}

func (m *capturingMailer) lastToken(t *testing.T) string {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.links, "expected a reset mail")
	link := m.links[len(m.links)-1]
	idx := strings.Index(link, "token=")
	require.NotEqual(t, -1, idx)
	return link[idx+len("token="):]
}

type request struct {
	method  string
	path    string
	body    interface{}
	token   string
	cookies []*http.Cookie
}

func perform(t *testing.T, r http.Handler, req request) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	httpReq := httptest.NewRequest(req.method, req.path, body)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	for _, c := range req.cookies {
		httpReq.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httpReq)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
