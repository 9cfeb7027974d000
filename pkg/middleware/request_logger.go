package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"colabora/pkg/logger"
)

// RequestLogger writes one zap entry per request. Errors attached with
// c.Error by the handlers are logged with the entry; 5xx responses log at
// error level.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"trace_id", c.GetString("trace_id"),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("request failed", fields...)
		case len(c.Errors) > 0 || status >= 400:
			log.Warn("request rejected", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
