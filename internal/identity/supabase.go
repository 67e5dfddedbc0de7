package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SupabaseConfig holds Supabase auth configuration.
type SupabaseConfig struct {
	URL       string
	AnonKey   string
	JWTSecret string
	Timeout   time.Duration
}

// SupabaseProvider verifies Supabase access tokens and reads user profiles
// from the Supabase Auth REST API.
type SupabaseProvider struct {
	config SupabaseConfig
	client *http.Client
}

func NewSupabaseProvider(config SupabaseConfig) *SupabaseProvider {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SupabaseProvider{
		config: config,
		client: &http.Client{Timeout: timeout},
	}
}

type supabaseUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

// VerifySession checks the token locally when the project JWT secret is
// known, and against GET /auth/v1/user otherwise.
func (p *SupabaseProvider) VerifySession(ctx context.Context, token string) (*Session, error) {
	if p.config.JWTSecret != "" {
		return p.verifyLocal(token)
	}

	user, err := p.fetchUser(ctx, token)
	if err != nil {
		return nil, err
	}
	profile := user.toProfile()
	return &Session{
		Token:   token,
		Subject: user.ID,
		Email:   user.Email,
		profile: profile,
	}, nil
}

// GetProfile returns the user profile behind a verified session.
func (p *SupabaseProvider) GetProfile(ctx context.Context, session *Session) (*Profile, error) {
	if session.profile != nil {
		return session.profile, nil
	}

	user, err := p.fetchUser(ctx, session.Token)
	if err != nil {
		// The session was accepted a moment ago; any failure now is the
		// provider's, not the caller's.
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return user.toProfile(), nil
}

func (p *SupabaseProvider) verifyLocal(token string) (*Session, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(p.config.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	subject := stringClaim(claims, "sub")
	if subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidSession)
	}

	return &Session{
		Token:     token,
		Subject:   subject,
		SessionID: stringClaim(claims, "session_id"),
		Email:     stringClaim(claims, "email"),
	}, nil
}

func (p *SupabaseProvider) fetchUser(ctx context.Context, token string) (*supabaseUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.URL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", p.config.AnonKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrInvalidSession
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", ErrProviderUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var user supabaseUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: decode user: %v", ErrProviderUnavailable, err)
	}
	return &user, nil
}

func (u *supabaseUser) toProfile() *Profile {
	meta := u.UserMetadata
	return &Profile{
		ExternalID: u.ID,
		Email:      strings.TrimSpace(u.Email),
		FirstName:  firstString(meta, "first_name", "given_name"),
		LastName:   firstString(meta, "last_name", "family_name"),
		FullName:   firstString(meta, "full_name", "name"),
		AvatarURL:  firstString(meta, "avatar_url", "picture"),
	}
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}

func firstString(values map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := values[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
