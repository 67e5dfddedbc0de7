package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	loggerKey    contextKey = "logger"
)

// New builds a zap logger. Development mode logs human readable lines at
// debug level, anything else logs JSON at info level.
func New(env string) (*zap.Logger, error) {
	if env == "development" || env == "test" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// WithRequestID stores the request id in ctx
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request id stored in ctx, if any
func RequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithLogger stores a request scoped logger in ctx
func WithLogger(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext returns the request scoped logger, or base with the request id
// attached when none was stored.
func FromContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if log, ok := ctx.Value(loggerKey).(*zap.Logger); ok && log != nil {
		return log
	}
	if base == nil {
		base = zap.NewNop()
	}
	if requestID := RequestID(ctx); requestID != "" {
		return base.With(zap.String("request_id", requestID))
	}
	return base
}
