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

// UserHandler serves the caller's profile and admin user management.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetMe returns the caller's profile with tier, points, balance and streak.
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), middleware.MustAuth(c).UserID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*user))
}

// UpdateMe edits the caller's profile.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	req := validation.BodyFrom[dto.UpdateProfileRequest](c)

	user, err := h.userService.UpdateProfile(c.Request.Context(), middleware.MustAuth(c).UserID, services.UpdateProfileInput{
		DisplayName: req.DisplayName,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*user))
}

// AdminUpdateUser changes another user's role or tier.
func (h *UserHandler) AdminUpdateUser(c *gin.Context) {
	uri := validation.URIFrom[dto.UserURI](c)
	req := validation.BodyFrom[dto.UpdateUserRequest](c)

	var role *models.Role
	if req.Role != nil {
		r := models.Role(*req.Role)
		role = &r
	}

	user, err := h.userService.AdminUpdateUser(c.Request.Context(), uri.UserID, role, req.TierID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*user))
}
