package middleware

import (
	"context"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskquest-api/internal/constants"
	apierrors "github.com/yukikurage/taskquest-api/internal/errors"
	"github.com/yukikurage/taskquest-api/internal/identity"
	"github.com/yukikurage/taskquest-api/internal/logger"
	"github.com/yukikurage/taskquest-api/internal/models"
	"go.uber.org/zap"
)

// Authenticator resolves a bearer credential to an authenticated caller.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*identity.AuthContext, error)
}

// RequireAuth authenticates the request from the Authorization header, or
// from the access token stored in the session cookie. On success the
// AuthContext is attached to both the gin context and the request context.
func RequireAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		authCtx, err := authn.Authenticate(ctx, credential(c))
		if err != nil {
			apierrors.Respond(c, err)
			return
		}

		ctx = identity.WithAuth(ctx, authCtx)
		ctx = logger.WithLogger(ctx, logger.FromContext(ctx, nil).With(zap.String("user_id", authCtx.UserID)))
		c.Request = c.Request.WithContext(ctx)
		c.Set(constants.ContextKeyAuth, authCtx)
		c.Next()
	}
}

// RequireRole rejects callers whose role is not one of roles. It must run
// after RequireAuth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		authCtx, ok := GetAuth(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		for _, role := range roles {
			if authCtx.Role == role {
				c.Next()
				return
			}
		}

		apierrors.Forbidden(c, "Insufficient role for this action")
	}
}

// GetAuth returns the authenticated caller.
func GetAuth(c *gin.Context) (*identity.AuthContext, bool) {
	value, exists := c.Get(constants.ContextKeyAuth)
	if !exists {
		return nil, false
	}
	authCtx, ok := value.(*identity.AuthContext)
	return authCtx, ok && authCtx != nil
}

// MustAuth returns the authenticated caller on routes behind RequireAuth.
func MustAuth(c *gin.Context) *identity.AuthContext {
	authCtx, ok := GetAuth(c)
	if !ok {
		panic("middleware: MustAuth called on a route without RequireAuth")
	}
	return authCtx
}

// credential returns the bearer token, falling back to the session.
func credential(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if scheme, token, found := strings.Cut(header, " "); found && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}

	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return ""
	}
	if token, ok := sessions.Default(c).Get(constants.SessionAccessToken).(string); ok {
		return token
	}
	return ""
}
