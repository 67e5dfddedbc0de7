package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskquest-api/internal/constants"
	"github.com/yukikurage/taskquest-api/internal/dto"
	apierrors "github.com/yukikurage/taskquest-api/internal/errors"
	"github.com/yukikurage/taskquest-api/internal/middleware"
	"github.com/yukikurage/taskquest-api/internal/services"
	"github.com/yukikurage/taskquest-api/internal/validation"
)

const resetRequestedMessage = "If the account exists, a password reset link has been sent"

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// Register creates a local account.
func (h *AuthHandler) Register(c *gin.Context) {
	req := validation.BodyFrom[dto.RegisterRequest](c)

	user, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProfileDTO(*user))
}

// Login authenticates a user, returns a token pair and stores it in the
// session for browser clients.
func (h *AuthHandler) Login(c *gin.Context) {
	req := validation.BodyFrom[dto.LoginRequest](c)

	user, pair, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.SessionAccessToken, pair.AccessToken)
	session.Set(constants.SessionRefreshToken, pair.RefreshToken)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
		User:         dto.ToProfileDTO(*user),
	})
}

// Refresh issues a new access token from the refresh token in the body or,
// when the body is empty, in the session.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	session := sessions.Default(c)
	token := req.RefreshToken
	if token == "" {
		token, _ = session.Get(constants.SessionRefreshToken).(string)
	}

	accessToken, err := h.authService.Refresh(c.Request.Context(), token)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	if session.Get(constants.SessionRefreshToken) != nil {
		session.Set(constants.SessionAccessToken, accessToken)
		if err := session.Save(); err != nil {
			apierrors.InternalError(c, "Failed to save session")
			return
		}
	}

	c.JSON(http.StatusOK, dto.AccessTokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   h.authService.AccessTTLSeconds(),
	})
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), middleware.MustAuth(c).UserID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*user))
}

// RequestPasswordReset mails a reset link. The response never reveals
// whether the account exists.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	req := validation.BodyFrom[dto.ResetPasswordRequest](c)

	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: resetRequestedMessage})
}

// ConfirmPasswordReset sets a new password from a reset token.
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	req := validation.BodyFrom[dto.ConfirmResetPasswordRequest](c)

	if err := h.authService.ConfirmPasswordReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password has been reset"})
}
