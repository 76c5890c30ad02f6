package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tasker/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an id (honoring one supplied by the
// client) and binds it into the context logger.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Header(requestIDHeader, id)
		ctx := logger.WithRequestID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
