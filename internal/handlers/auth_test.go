package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskquest-api/internal/dto"
	apierrors "github.com/yukikurage/taskquest-api/internal/errors"
	"github.com/yukikurage/taskquest-api/internal/middleware"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/services"
	"github.com/yukikurage/taskquest-api/internal/testutil"
	"github.com/yukikurage/taskquest-api/internal/validation"
)

func setupAuthRouter(env *handlerEnv) *gin.Engine {
	handler := NewAuthHandler(env.auth, env.users)

	r := env.router()
	authRoutes := r.Group("/api/auth")
	authRoutes.POST("/register", validation.Body[dto.RegisterRequest](), handler.Register)
	authRoutes.POST("/login", validation.Body[dto.LoginRequest](), handler.Login)
	authRoutes.POST("/refresh", handler.Refresh)
	authRoutes.POST("/logout", handler.Logout)
	authRoutes.POST("/reset-password", validation.Body[dto.ResetPasswordRequest](), handler.RequestPasswordReset)
	authRoutes.POST("/reset-password/confirm", validation.Body[dto.ConfirmResetPasswordRequest](), handler.ConfirmPasswordReset)
	authRoutes.GET("/me", middleware.RequireAuth(env.identity), handler.Me)
	return r
}

func registerAndLogin(t *testing.T, env *handlerEnv, r *gin.Engine, email string) (dto.LoginResponse, []*http.Cookie) {
	t.Helper()

	w := perform(t, r, request{method: http.MethodPost, path: "/api/auth/register", body: map[string]string{
		"email":    email,
		"password": "supersecret",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = perform(t, r, request{method: http.MethodPost, path: "/api/auth/login", body: map[string]string{
		"email":    email,
		"password": "supersecret",
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[dto.LoginResponse](t, w), w.Result().Cookies()
}

func TestAuthHandler_Register(t *testing.T) {
	env := newHandlerEnv(t)
	r := setupAuthRouter(env)

	w := perform(t, r, request{method: http.MethodPost, path: "/api/auth/register", body: map[string]string{
		"email":        "New.User@Example.com",
		"password":     "supersecret",
		"display_name": "New User",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	profile := decode[dto.ProfileDTO](t, w)
	assert.Equal(t, "new.user@example.com", profile.Email)
	assert.Equal(t, "New User", profile.DisplayName)
	assert.Equal(t, models.RoleMember, profile.Role)
	require.NotNil(t, profile.Tier)
	assert.Equal(t, testutil.LowestTier(t, env.db).ID, profile.Tier.ID)

	w = perform(t, r, request{method: http.MethodPost, path: "/api/auth/register", body: map[string]string{
		"email":    "new.user@example.com",
		"password": "anotherpass",
	}})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apierrors.ErrCodeAlreadyExists, decode[apierrors.APIError](t, w).Code)
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	env := newHandlerEnv(t)
	r := setupAuthRouter(env)

	w := perform(t, r, request{method: http.MethodPost, path: "/api/auth/register", body: map[string]string{
		"email":    "not-an-email",
		"password": "short",
	}})
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode[apierrors.APIError](t, w)
	details, ok := body.Details.(map[string]interface{})
	require.True(t, ok, "expected field details, got %v", body.Details)
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAuthHandler_MultibytePasswordOverBcryptLimit(t *testing.T) {
	env := newHandlerEnv(t)
	r := setupAuthRouter(env)

	// 60 runes pass the binding rule but encode to 120 bytes.
	long := strings.Repeat("é", 60)

	w := perform(t, r, request{method: http.MethodPost, path: "/api/auth/register", body: map[string]string{
		"email":    "accent@example.com",
		"password": long,
	}})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, apierrors.ErrCodeInvalidInput, decode[apierrors.APIError](t, w).Code)

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)

	registerAndLogin(t, env, r, "accent@example.com")
	w = perform(t, r, request{method: http.MethodPost, path: "/api/auth/reset-password", body: map[string]string{
		"email": "accent@example.com",
	}})
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(t, r, request{method: http.MethodPost, path: "/api/auth/reset-password/confirm", body: map[string]string{
		"token":        env.mailer.lastToken(t),
		"new_password": long,
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	_, _, err := env.auth.Login(context.Background(), "accent@example.com", "supersecret")
	assert.NoError(t, err)
}

func TestAuthHandler_Login(t *testing.T) {
	env := newHandlerEnv(t)
	r := setupAuthRouter(env)

	login, cookies := registerAndLogin(t, env, r, "login@example.com")
	assert.NotEmpty(t, login.AccessToken)
	assert.NotEmpty(t, login.RefreshToken)
	assert.Equal(t, "Bearer", login.TokenType)
	assert.Equal(t, int64(15*60), login.ExpiresIn)
	assert.Equal(t, "login@example.com", login.User.Email)
	require.NotEmpty(t, cookies, "expected session cookie to be set")

	// The bearer token and the session cookie both authenticate.
	w := perform(t, r, request{method: http.MethodGet, path: "/api/auth/me", token: login.AccessToken})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, login.User.ID, decode[dto.ProfileDTO](t, w).ID)

	w = perform(t, r, request{method: http.MethodGet, path: "/api/auth/me", cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, login.User.ID, decode[dto.ProfileDTO](t, w).ID)
}

func TestAuthHandler_LoginRejectsBadCredentials(t *testing.T) {
	env := newHandlerEnv(t)
	r := setupAuthRouter(env)
	registerAndLogin(t, env, r, "known@example.com")

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "known@example.com", password: "wrongpassword"},
		{name: "unknown email", email: "nobody@example.com", password: "supersecret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(t, r, request{method: http.MethodPost, path: "/api/auth/login", body: map[string]string{
				"email":    tt.email,
				"password": tt.password,
			}})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, apierrors.ErrCodeInvalidCredentials, decode[apierrors.APIError](t, w).Code)
		})
	}
}

func TestAuthHandler_RefreshFromBodyAndSession(t *testing.T) {
	env := newHandlerEnv(t)
	r := setupAuthRouter(env)
	login, cookies := registerAndLogin(t, env, r, "refresh@example.com")

	w := perform(t, r, request{method: http.MethodPost, path: "/api/auth/refresh", body: map[string]string{
		"refresh_token": login.RefreshToken,
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	refreshed := decode[dto.AccessTokenResponse](t, w)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, "Bearer", refreshed.TokenType)

	w = perform(t, r, request{method: http.MethodPost, path: "/api/auth/refresh", cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// An access token is not a refresh token.
	w = perform(t, r, request{method: http.MethodPost, path: "/api/auth/refresh", body: map[string]string{
		"refresh_token": login.AccessToken,
	}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(t, r, request{method: http.MethodPost, path: "/api/auth/refresh"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	env := newHandlerEnv(t)
	r := setupAuthRouter(env)
	_, cookies := registerAndLogin(t, env, r, "logout@example.com")

	w := perform(t, r, request{method: http.MethodPost, path: "/api/auth/logout", cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "expected the session cookie to be expired")
}

func TestAuthHandler_PasswordReset(t *testing.T) {
	env := newHandlerEnv(t)
	r := setupAuthRouter(env)
	registerAndLogin(t, env, r, "reset@example.com")

	for _, email := range []string{"reset@example.com", "ghost@example.com"} {
		w := perform(t, r, request{method: http.MethodPost, path: "/api/auth/reset-password", body: map[string]string{
			"email": email,
		}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, resetRequestedMessage, decode[dto.MessageResponse](t, w).Message)
	}
	require.Len(t, env.mailer.links, 1)

	token := env.mailer.lastToken(t)
	w := perform(t, r, request{method: http.MethodPost, path: "/api/auth/reset-password/confirm", body: map[string]string{
		"token":        token,
		"new_password": "brandnewpass",
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Single use: the token is bound to the replaced password hash.
	w = perform(t, r, request{method: http.MethodPost, path: "/api/auth/reset-password/confirm", body: map[string]string{
		"token":        token,
		"new_password": "yetanotherpass",
	}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, _, err := env.auth.Login(context.Background(), "reset@example.com", "brandnewpass")
	require.NoError(t, err)
	_, _, err = env.auth.Login(context.Background(), "reset@example.com", "supersecret")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}
