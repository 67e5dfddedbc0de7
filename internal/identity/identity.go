// Package identity describes authenticated callers and the external identity
// providers that vouch for them.
package identity

import (
	"context"
	"errors"

	"github.com/yukikurage/taskquest-api/internal/models"
)

var (
	// ErrInvalidSession is returned when the provider rejects the credential.
	ErrInvalidSession = errors.New("identity: invalid or expired session")
	// ErrProviderUnavailable is returned when the provider could not be reached
	// or answered with something other than a verdict on the credential.
	ErrProviderUnavailable = errors.New("identity: provider request failed")
)

// Source tells how a caller was authenticated.
type Source string

const (
	SourceLocal    Source = "local"
	SourceExternal Source = "external"
)

// Session is a credential accepted by a provider.
type Session struct {
	Token     string
	Subject   string
	SessionID string
	Email     string

	// profile is filled when verification already fetched the user record.
	profile *Profile
}

// Profile is the user information exposed by the provider.
type Profile struct {
	ExternalID string
	Email      string
	FirstName  string
	LastName   string
	FullName   string
	AvatarURL  string
}

// Provider verifies externally issued sessions.
type Provider interface {
	VerifySession(ctx context.Context, token string) (*Session, error)
	GetProfile(ctx context.Context, session *Session) (*Profile, error)
}

// AuthContext is attached to a request once authentication succeeded.
type AuthContext struct {
	UserID    string
	Email     string
	Role      models.Role
	SessionID string
	Source    Source
}

// IsAdmin reports whether the caller has the ADMIN role.
func (a *AuthContext) IsAdmin() bool {
	return a != nil && a.Role == models.RoleAdmin
}

type contextKey struct{}

// WithAuth returns a copy of ctx carrying auth.
func WithAuth(ctx context.Context, auth *AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, auth)
}

// FromContext returns the AuthContext stored in ctx.
func FromContext(ctx context.Context) (*AuthContext, bool) {
	auth, ok := ctx.Value(contextKey{}).(*AuthContext)
	return auth, ok && auth != nil
}
