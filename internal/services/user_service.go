package services

import (
	"context"
	"errors"
	"strings"

	apierrors "github.com/yukikurage/taskquest-api/internal/errors"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/repository"
	"gorm.io/gorm"
)

// UserService manages profiles and administrative changes to users.
type UserService struct {
	userRepo repository.UserRepository
	tierRepo repository.TierRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, tierRepo repository.TierRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		tierRepo: tierRepo,
	}
}

// GetUser retrieves a user by ID with its tier.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, wrapInternal("Failed to find user", err)
	}
	return user, nil
}

// UpdateProfileInput holds optional profile changes.
type UpdateProfileInput struct {
	DisplayName *string
	FirstName   *string
	LastName    *string
	AvatarURL   *string
}

// UpdateProfile applies the provided profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*models.User, error) {
	fields := map[string]interface{}{}
	if input.DisplayName != nil {
		fields["display_name"] = strings.TrimSpace(*input.DisplayName)
	}
	if input.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.AvatarURL != nil {
		fields["avatar_url"] = strings.TrimSpace(*input.AvatarURL)
	}

	if len(fields) > 0 {
		if err := s.userRepo.Update(ctx, id, fields); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, wrapInternal("Failed to update profile", err)
		}
	}

	return s.GetUser(ctx, id)
}

// AdminUpdateUser changes a user's role and/or tier.
func (s *UserService) AdminUpdateUser(ctx context.Context, id string, role *models.Role, tierID *string) (*models.User, error) {
	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if role != nil {
		if !role.Valid() {
			return nil, apierrors.Validation("Invalid role", map[string]string{"role": "Must be one of: ADMIN, LEADER, MEMBER"})
		}
		fields["role"] = *role
	}
	if tierID != nil {
		if _, err := s.tierRepo.FindByID(ctx, *tierID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTierNotFound
			}
			return nil, wrapInternal("Failed to find tier", err)
		}
		fields["tier_id"] = *tierID
	}

	if len(fields) > 0 {
		if err := s.userRepo.Update(ctx, id, fields); err != nil {
			return nil, wrapInternal("Failed to update user", err)
		}
	}

	return s.GetUser(ctx, id)
}
