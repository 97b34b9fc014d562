package logger

import (
	"time"

	"github.com/gin-gonic/gin"
)

// returns a gin middleware that logs one line per request
// request-scoped logger is stored on the request context for handlers
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method
		clientIP := c.ClientIP()

		reqLogger := defaultLogger.With("method", method, "path", path)
		c.Request = c.Request.WithContext(WithContext(c.Request.Context(), reqLogger))

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"status", status,
			"latency", time.Since(start),
			"method", method,
			"path", path,
			"client_ip", clientIP,
		}

		switch {
		case status >= 500:
			defaultLogger.Error("request", args...)
		case status >= 400:
			defaultLogger.Warn("request", args...)
		default:
			defaultLogger.Debug("request", args...)
		}
	}
}
