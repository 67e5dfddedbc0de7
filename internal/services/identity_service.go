package services

import (
	"context"
	"errors"

	"github.com/yukikurage/taskquest-api/internal/auth"
	"github.com/yukikurage/taskquest-api/internal/constants"
	"github.com/yukikurage/taskquest-api/internal/identity"
	"github.com/yukikurage/taskquest-api/internal/logger"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IdentityService resolves bearer credentials to local users, provisioning
// accounts for first-time external identities.
type IdentityService struct {
	userRepo repository.UserRepository
	tierRepo repository.TierRepository
	tokens   *auth.TokenManager
	provider identity.Provider
	log      *zap.Logger
}

// NewIdentityService creates a new IdentityService. provider may be nil when
// no external identity provider is configured.
func NewIdentityService(
	userRepo repository.UserRepository,
	tierRepo repository.TierRepository,
	tokens *auth.TokenManager,
	provider identity.Provider,
	log *zap.Logger,
) *IdentityService {
	return &IdentityService{
		userRepo: userRepo,
		tierRepo: tierRepo,
		tokens:   tokens,
		provider: provider,
		log:      log,
	}
}

// Authenticate verifies token and returns the caller's AuthContext. Locally
// issued access tokens are tried first, then the external provider.
func (s *IdentityService) Authenticate(ctx context.Context, token string) (*identity.AuthContext, error) {
	if token == "" {
		return nil, ErrMissingCredential
	}

	claims, err := s.tokens.Parse(token, constants.TokenTypeAccess)
	if err == nil {
		return s.authenticateLocal(ctx, claims)
	}
	if errors.Is(err, auth.ErrExpiredToken) || s.provider == nil {
		return nil, ErrInvalidSession.WithCause(err)
	}

	return s.authenticateExternal(ctx, token)
}

func (s *IdentityService) authenticateLocal(ctx context.Context, claims *auth.Claims) (*identity.AuthContext, error) {
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, wrapInternal("Failed to load user", err)
	}

	return &identity.AuthContext{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		SessionID: claims.ID,
		Source:    identity.SourceLocal,
	}, nil
}

func (s *IdentityService) authenticateExternal(ctx context.Context, token string) (*identity.AuthContext, error) {
	session, err := s.provider.VerifySession(ctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidSession) {
			return nil, ErrInvalidSession.WithCause(err)
		}
		return nil, ErrProviderFailure.WithCause(err)
	}

	profile, err := s.provider.GetProfile(ctx, session)
	if err != nil {
		return nil, ErrProfileLookup.WithCause(err)
	}

	email := normalizeEmail(profile.Email)
	if email == "" {
		return nil, ErrProfileNoEmail
	}

	user, err := s.provision(ctx, email, profile)
	if err != nil {
		return nil, err
	}

	return &identity.AuthContext{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		SessionID: session.SessionID,
		Source:    identity.SourceExternal,
	}, nil
}

// provision returns the user owning email, creating it on first sight.
func (s *IdentityService) provision(ctx context.Context, email string, profile *identity.Profile) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrapInternal("Failed to find user", err)
	}

	tier, err := lowestTier(ctx, s.tierRepo)
	if err != nil {
		return nil, err
	}

	candidate := &models.User{
		Email:        email,
		PasswordHash: constants.ExternalPasswordPlaceholder,
		DisplayName:  displayName(profile.FullName, profile.FirstName, profile.LastName, email),
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		AvatarURL:    profile.AvatarURL,
		Role:         models.RoleMember,
		TierID:       tier.ID,
	}

	user, created, err := s.userRepo.FindOrCreateByEmail(ctx, candidate)
	if err != nil {
		return nil, wrapInternal("Failed to provision user", err)
	}
	if created {
		logger.FromContext(ctx, s.log).Info("provisioned user from identity provider",
			zap.String("user_id", user.ID),
			zap.String("external_id", profile.ExternalID),
			zap.String("tier", tier.Name),
		)
	}
	return user, nil
}
