package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Recovery catches panics, logs them with a stack trace, and answers 500.
// The correlation id is kept on both the log line and the response so a
// crashed request can still be traced.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				correlationID := GetCorrelationID(c)

				logger.Error("Panic recovered",
					"error", r,
					"stack", string(debug.Stack()),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"correlation_id", correlationID,
				)

				response := gin.H{
					"error": gin.H{
						"code":    "INTERNAL_SERVER_ERROR",
						"message": "An internal server error occurred",
					},
				}
				if correlationID != "" {
					response["correlation_id"] = correlationID
				}

				c.AbortWithStatusJSON(http.StatusInternalServerError, response)
			}
		}()

		c.Next()
	}
}
