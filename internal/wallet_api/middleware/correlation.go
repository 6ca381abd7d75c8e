package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CorrelationIDHeader is the HTTP header carrying the correlation ID
	CorrelationIDHeader = "X-Correlation-ID"

	// CorrelationIDKey is the gin context key for the correlation ID
	CorrelationIDKey = "correlation_id"

	// maxCorrelationIDLength caps inbound ids so a hostile caller cannot
	// inflate every log line of the request
	maxCorrelationIDLength = 128
)

// CorrelationID assigns each request a correlation id, honoring one supplied
// by the caller. Marketplace services pass the id along with contract events,
// so a top-up or settlement can be traced across both binaries.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationIDHeader)
		if correlationID == "" || len(correlationID) > maxCorrelationIDLength {
			correlationID = uuid.New().String()
		}

		c.Header(CorrelationIDHeader, correlationID)
		c.Set(CorrelationIDKey, correlationID)

		c.Next()
	}
}

// GetCorrelationID retrieves the correlation ID from the gin context if present
func GetCorrelationID(c *gin.Context) string {
	if id, exists := c.Get(CorrelationIDKey); exists {
		if correlationID, ok := id.(string); ok {
			return correlationID
		}
	}
	return ""
}
