package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"paisatrack/internal/logger"
	"paisatrack/internal/uuid"
)

// RequestLogger logs each request with a generated request ID, latency,
// and response status.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.New()
		c.Set("requestID", requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		logger.Get().Infow("request",
			"requestId", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
		)
	}
}
