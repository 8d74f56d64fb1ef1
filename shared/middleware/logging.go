package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storefront/services/shared/logging"
)

const (
	RequestIDHeader = "X-Request-ID"
	ctxLogger       = "logger"
)

// LoggingMiddleware tags each request with an id (reusing an incoming
// X-Request-ID) and logs it once the handler chain completes.
func LoggingMiddleware(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		reqLog := log.With("request_id", requestID)
		c.Set(ctxLogger, reqLog)

		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		}
		if c.Writer.Status() >= 500 {
			reqLog.Warn(c.Request.Context(), "request completed", args...)
			return
		}
		reqLog.Info(c.Request.Context(), "request completed", args...)
	}
}

// RequestLogger returns the logger attached by LoggingMiddleware, or a no-op
// logger when the middleware is not installed.
func RequestLogger(c *gin.Context) logging.Logger {
	if v, ok := c.Get(ctxLogger); ok {
		if l, ok := v.(logging.Logger); ok {
			return l
		}
	}
	return logging.Nop()
}
