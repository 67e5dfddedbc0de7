package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/taskquest-api/internal/constants"
	"github.com/yukikurage/taskquest-api/internal/logger"
	"go.uber.org/zap"
)

// RequestID tags each request with an id, reusing a well-formed incoming
// X-Request-ID header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderRequestID)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(constants.HeaderRequestID, requestID)
		c.Next()
	}
}

// Logger stores a request scoped logger in the request context and writes
// one access log line per request.
func Logger(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx := c.Request.Context()
		c.Request = c.Request.WithContext(logger.WithLogger(ctx, logger.FromContext(ctx, base)))

		c.Next()

		log := logger.FromContext(c.Request.Context(), base)
		fields := []zap.Field{
			zap.String("client_ip", c.ClientIP()),
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Duration("duration", time.Since(start)),
			zap.Int("size_bytes", c.Writer.Size()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.Last().Error()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Error("HTTP server error", fields...)
		case status >= 400:
			log.Warn("HTTP client error", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
