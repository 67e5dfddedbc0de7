package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       = "INVALID_TOKEN"

	// Authorization errors
	ErrCodeForbidden               = "FORBIDDEN"
	ErrCodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"

	// Validation errors
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeMissingField  = "MISSING_FIELD"
	ErrCodeInvalidFormat = "INVALID_FORMAT"

	// Resource errors
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeConflict      = "CONFLICT"

	// Business logic errors
	ErrCodeInvalidOperation  = "INVALID_OPERATION"
	ErrCodeOperationFailed   = "OPERATION_FAILED"
	ErrCodeInsufficientFunds = "INSUFFICIENT_FUNDS"

	// Service errors
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeExternalService    = "EXTERNAL_SERVICE_ERROR"
	ErrCodeConfiguration      = "CONFIGURATION_ERROR"
	ErrCodeRateLimited        = "RATE_LIMITED"
)

// Kind classifies an error for the HTTP layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindExternal
	KindConfiguration
	KindUnavailable
	KindRateLimited
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// APIError represents a standardized API error response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Debug   string      `json:"debug,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// AppError is the error type returned by services and middleware. Sentinel
// AppErrors are compared with errors.Is by identity.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Details interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError.
func New(kind Kind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

// Wrap creates an AppError around a cause. The cause is kept for errors.Is and
// for diagnostics, never shown to clients in release mode.
func Wrap(kind Kind, code, message string, err error) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message, Err: err}
}

// WithCause returns a copy of a sentinel error carrying a cause. errors.Is
// against the sentinel still matches through the cause chain.
func (e *AppError) WithCause(err error) *AppError {
	return &AppError{Kind: e.Kind, Code: e.Code, Message: e.Message, Details: e.Details, Err: &sentinelCause{sentinel: e, cause: err}}
}

type sentinelCause struct {
	sentinel *AppError
	cause    error
}

func (s *sentinelCause) Error() string {
	return s.cause.Error()
}

func (s *sentinelCause) Unwrap() []error {
	return []error{s.sentinel, s.cause}
}

// Validation builds a validation error with per-field details.
func Validation(message string, details interface{}) *AppError {
	return &AppError{Kind: KindValidation, Code: ErrCodeInvalidInput, Message: message, Details: details}
}

// KindOf returns the kind of the first AppError in the chain.
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Predefined errors
var (
	ErrUnauthorized = New(KindUnauthorized, ErrCodeUnauthorized, "Authentication required")
	ErrRateLimited  = New(KindRateLimited, ErrCodeRateLimited, "Too many requests")
)

// Respond is the central error responder: it records err on the gin context
// for the access log, maps its kind to a status and writes the JSON body.
func Respond(c *gin.Context, err error) {
	_ = c.Error(err)

	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		appErr = Wrap(KindInternal, ErrCodeInternalError, "Internal server error", err)
	}

	body := &APIError{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	}
	if gin.Mode() != gin.ReleaseMode && appErr.Err != nil {
		body.Debug = appErr.Err.Error()
	}

	RespondWithError(c, appErr.Kind.Status(), body)
	c.Abort()
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	Respond(c, New(KindUnauthorized, ErrCodeUnauthorized, message))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	Respond(c, New(KindForbidden, ErrCodeForbidden, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	Respond(c, New(KindValidation, ErrCodeInvalidInput, message))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	Respond(c, New(KindInternal, ErrCodeInternalError, message))
}
