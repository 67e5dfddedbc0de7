package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yukikurage/taskquest-api/internal/constants"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

const issuer = "taskquest"

// Claims are the claims carried by every token this service issues.
type Claims struct {
	UserID      string `json:"uid"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role,omitempty"`
	Type        string `json:"typ"`
	Fingerprint string `json:"fp,omitempty"`
	jwt.RegisteredClaims
}

// Subject identifies the account a token is issued for.
type Subject struct {
	UserID       string
	Email        string
	Role         string
	PasswordHash string
}

// TokenPair is returned on login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// TokenManager issues and verifies HS256 tokens.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
	now        func() time.Time
}

func NewTokenManager(secret string, accessTTL, refreshTTL, resetTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		resetTTL:   resetTTL,
		now:        time.Now,
	}
}

// AccessTTL returns the lifetime of access tokens.
func (m *TokenManager) AccessTTL() time.Duration {
	return m.accessTTL
}

// IssuePair issues an access token and a refresh token sharing one session id.
func (m *TokenManager) IssuePair(subject Subject) (*TokenPair, error) {
	sessionID := uuid.NewString()

	access, err := m.sign(subject, constants.TokenTypeAccess, sessionID, m.accessTTL, "")
	if err != nil {
		return nil, err
	}
	refresh, err := m.sign(subject, constants.TokenTypeRefresh, sessionID, m.refreshTTL, "")
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(m.accessTTL.Seconds()),
	}, nil
}

// IssueAccess issues an access token for an existing session.
func (m *TokenManager) IssueAccess(subject Subject, sessionID string) (string, error) {
	return m.sign(subject, constants.TokenTypeAccess, sessionID, m.accessTTL, "")
}

// IssueReset issues a password reset token bound to the current password hash.
func (m *TokenManager) IssueReset(subject Subject) (string, error) {
	return m.sign(subject, constants.TokenTypeReset, uuid.NewString(), m.resetTTL, PasswordFingerprint(subject.PasswordHash))
}

// Parse verifies signature, expiry and token type.
func (m *TokenManager) Parse(token, expectedType string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Type != expectedType || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (m *TokenManager) sign(subject Subject, tokenType, sessionID string, ttl time.Duration, fingerprint string) (string, error) {
	now := m.now()
	claims := &Claims{
		UserID:      subject.UserID,
		Email:       subject.Email,
		Role:        subject.Role,
		Type:        tokenType,
		Fingerprint: fingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Issuer:    issuer,
			Subject:   subject.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}
