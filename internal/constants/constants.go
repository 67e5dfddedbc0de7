package constants

import "time"

// Pagination
const (
	MinPageSize     = 1
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Context and session keys
const (
	ContextKeyAuth      = "auth"
	ContextKeyTask      = "task"
	ContextKeyProject   = "project"
	SessionCookieName   = "taskquest_session"
	SessionAccessToken  = "access_token"
	SessionRefreshToken = "refresh_token"
	HeaderRequestID     = "X-Request-ID"
)

// Accounts
const (
	MinPasswordLength = 8
	// MaxPasswordBytes is bcrypt's input limit, counted in bytes.
	MaxPasswordBytes = 72

	// ExternalPasswordPlaceholder marks accounts whose credentials live with the
	// identity provider. It is not a bcrypt hash, so it never verifies.
	ExternalPasswordPlaceholder = "!external"
)

// Tokens
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeReset   = "reset"

	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
	DefaultResetTokenTTL   = 30 * time.Minute
)

// Gamification
const (
	PointsPerDifficulty     = 10
	ExternalDemandBonusNum  = 3
	ExternalDemandBonusDen  = 2
	MinTaskDifficulty       = 1
	MaxTaskDifficulty       = 10
	PointReasonTaskComplete = "task_completed"
)

// AI
const (
	MaxAIGeneratedTasks = 20
)
