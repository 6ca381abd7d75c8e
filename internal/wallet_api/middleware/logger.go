package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger logs one line per request with method, route, status, latency, and
// the correlation id. Health probes are skipped to keep the log usable.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if path == "/health" {
			return
		}

		requestLogger := logger
		if correlationID := GetCorrelationID(c); correlationID != "" {
			requestLogger = logger.With("correlation_id", correlationID)
		}

		if raw != "" {
			path = path + "?" + raw
		}

		requestLogger.Info("HTTP request",
			"method", c.Request.Method,
			"path", path,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}
