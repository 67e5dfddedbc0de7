package services

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/yukikurage/taskquest-api/internal/auth"
	"github.com/yukikurage/taskquest-api/internal/constants"
	"github.com/yukikurage/taskquest-api/internal/logger"
	"github.com/yukikurage/taskquest-api/internal/mailer"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthService handles local accounts and tokens.
type AuthService struct {
	userRepo   repository.UserRepository
	tierRepo   repository.TierRepository
	tokens     *auth.TokenManager
	mailer     mailer.Mailer
	resetURL   string
	log        *zap.Logger
	hashPasswd func(string) (string, error)
}

// NewAuthService creates a new AuthService. resetURL is the frontend page
// that receives the reset token as the "token" query parameter.
func NewAuthService(
	userRepo repository.UserRepository,
	tierRepo repository.TierRepository,
	tokens *auth.TokenManager,
	m mailer.Mailer,
	resetURL string,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tierRepo:   tierRepo,
		tokens:     tokens,
		mailer:     m,
		resetURL:   resetURL,
		log:        log,
		hashPasswd: auth.HashPassword,
	}
}

// RegisterInput represents the information needed to create an account.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	FirstName   string
	LastName    string
}

// Register creates a local account in the lowest tier with role MEMBER.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := normalizeEmail(input.Email)
	if err := checkPassword(input.Password); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrapInternal("Failed to check email", err)
	}

	tier, err := lowestTier(ctx, s.tierRepo)
	if err != nil {
		return nil, err
	}

	hash, err := s.hashPasswd(input.Password)
	if err != nil {
		return nil, wrapInternal("Failed to hash password", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName(strings.TrimSpace(input.DisplayName), input.FirstName, input.LastName, email),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         models.RoleMember,
		TierID:       tier.ID,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, wrapInternal("Failed to create user", err)
	}

	user.Tier = tier
	logger.FromContext(ctx, s.log).Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *auth.TokenPair, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, wrapInternal("Failed to find user", err)
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(subjectOf(user))
	if err != nil {
		return nil, nil, wrapInternal("Failed to issue tokens", err)
	}

	return user, pair, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrInvalidToken
	}

	claims, err := s.tokens.Parse(refreshToken, constants.TokenTypeRefresh)
	if err != nil {
		return "", ErrInvalidToken.WithCause(err)
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidToken
		}
		return "", wrapInternal("Failed to find user", err)
	}

	access, err := s.tokens.IssueAccess(subjectOf(user), claims.ID)
	if err != nil {
		return "", wrapInternal("Failed to issue token", err)
	}
	return access, nil
}

// AccessTTLSeconds is the lifetime reported to clients.
func (s *AuthService) AccessTTLSeconds() int64 {
	return int64(s.tokens.AccessTTL().Seconds())
}

// RequestPasswordReset mails a reset link to local accounts. Unknown emails
// and external accounts succeed silently so the endpoint cannot be used to
// probe for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	log := logger.FromContext(ctx, s.log)

	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return wrapInternal("Failed to find user", err)
	}
	if user.PasswordHash == constants.ExternalPasswordPlaceholder {
		log.Info("password reset skipped for external account", zap.String("user_id", user.ID))
		return nil
	}

	token, err := s.tokens.IssueReset(subjectOf(user))
	if err != nil {
		return wrapInternal("Failed to issue reset token", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, s.resetLink(token)); err != nil {
		// The response stays generic; the failure is only visible in logs.
		log.Error("failed to send password reset mail", zap.String("user_id", user.ID), zap.Error(err))
	}
	return nil
}

// ConfirmPasswordReset sets a new password using a reset token. Changing the
// password invalidates the token.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if err := checkPassword(newPassword); err != nil {
		return err
	}

	claims, err := s.tokens.Parse(token, constants.TokenTypeReset)
	if err != nil {
		return ErrInvalidToken.WithCause(err)
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidToken
		}
		return wrapInternal("Failed to find user", err)
	}
	if claims.Fingerprint != auth.PasswordFingerprint(user.PasswordHash) {
		return ErrInvalidToken
	}

	hash, err := s.hashPasswd(newPassword)
	if err != nil {
		return wrapInternal("Failed to hash password", err)
	}
	if err := s.userRepo.Update(ctx, user.ID, map[string]interface{}{"password_hash": hash}); err != nil {
		return wrapInternal("Failed to update password", err)
	}

	logger.FromContext(ctx, s.log).Info("password reset", zap.String("user_id", user.ID))
	return nil
}

func (s *AuthService) resetLink(token string) string {
	u, err := url.Parse(s.resetURL)
	if err != nil {
		return s.resetURL + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func subjectOf(user *models.User) auth.Subject {
	return auth.Subject{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         string(user.Role),
		PasswordHash: user.PasswordHash,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// lowestTier returns the default tier for new accounts.
func lowestTier(ctx context.Context, tierRepo repository.TierRepository) (*models.Tier, error) {
	tier, err := tierRepo.Lowest(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoTierConfigured
		}
		return nil, wrapInternal("Failed to load tiers", err)
	}
	return tier, nil
}

// displayName picks the first non-empty of: explicit name, first+last, local
// part of the email.
func displayName(explicit, first, last, email string) string {
	if explicit != "" {
		return explicit
	}
	if full := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last)); full != "" {
		return full
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// checkPassword enforces the length bounds. The upper bound is in bytes since
// bcrypt rejects longer input.
func checkPassword(password string) error {
	if len(password) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > constants.MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}
