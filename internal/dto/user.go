package dto

import (
	"time"

	"github.com/yukikurage/taskquest-api/internal/models"
)

// UserDTO represents a user in nested API responses
type UserDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// TierDTO represents a tier in API responses
type TierDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Order     int    `json:"order"`
	MinPoints int64  `json:"min_points"`
}

// ProfileDTO is the full view of the authenticated user
type ProfileDTO struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	DisplayName  string      `json:"display_name"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	AvatarURL    string      `json:"avatar_url"`
	Role         models.Role `json:"role"`
	Points       int64       `json:"points"`
	Balance      int64       `json:"balance"`
	StreakDays   int         `json:"streak_days"`
	LastActiveAt *time.Time  `json:"last_active_at"`
	Tier         *TierDTO    `json:"tier,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// UpdateProfileRequest is the body of PATCH /users/me
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,notblank,max=100"`
	FirstName   *string `json:"first_name" binding:"omitempty,max=100"`
	LastName    *string `json:"last_name" binding:"omitempty,max=100"`
	AvatarURL   *string `json:"avatar_url" binding:"omitempty,url,max=500"`
}

// UpdateUserRequest is the body of PATCH /admin/users/:userId
type UpdateUserRequest struct {
	Role   *string `json:"role" binding:"omitempty,user_role"`
	TierID *string `json:"tier_id" binding:"omitempty,uuid"`
}

// UserURI binds the :userId path parameter
type UserURI struct {
	UserID string `uri:"userId" binding:"required,uuid"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
	}
}

// ToTierDTO converts a Tier model to TierDTO
func ToTierDTO(tier models.Tier) TierDTO {
	return TierDTO{
		ID:        tier.ID,
		Name:      tier.Name,
		Order:     tier.Order,
		MinPoints: tier.MinPoints,
	}
}

// ToProfileDTO converts a User model to ProfileDTO
func ToProfileDTO(user models.User) ProfileDTO {
	dto := ProfileDTO{
		ID:           user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		AvatarURL:    user.AvatarURL,
		Role:         user.Role,
		Points:       user.Points,
		Balance:      user.Balance,
		StreakDays:   user.StreakDays,
		LastActiveAt: user.LastActiveAt,
		CreatedAt:    user.CreatedAt,
	}

	// Include tier if preloaded
	if user.Tier != nil {
		tier := ToTierDTO(*user.Tier)
		dto.Tier = &tier
	}

	return dto
}
