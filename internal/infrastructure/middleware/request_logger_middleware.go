package middleware

import (
	"context"
	"time"

	"vodnet/pkg/logger"
	"vodnet/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RequestLoggerMiddleware assigns each request an id, exposes it in the
// X-Request-ID response header, and logs the request through a ContextLogger
// so the id and any trace fields end up on the log line.
func RequestLoggerMiddleware(cl *logger.ContextLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = utils.GenerateRequestID()
		}
		c.Header("X-Request-ID", requestID)

		// ContextLogger looks fields up by these string keys.
		ctx := context.WithValue(c.Request.Context(), "request_id", requestID)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		cl.LogRequest(c.Request.Context(),
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start).Milliseconds(),
		)
	}
}
