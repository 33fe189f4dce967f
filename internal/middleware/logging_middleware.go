// internal/middleware/logging_middleware.go
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"device-configurator/internal/metrics"
	"device-configurator/internal/utils"
)

// LoggingMiddleware logs every request and counts it by route
func LoggingMiddleware(logger *utils.ServiceLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.ObserveRequest(endpoint, c.Request.Method, strconv.Itoa(c.Writer.Status()))

		requestLogger := logger
		if requestID := c.GetString("request_id"); requestID != "" {
			requestLogger = logger.WithRequestID(requestID)
		}
		requestLogger.LogAPIRequest(
			c.Request.Method,
			c.Request.URL.Path,
			c.ClientIP(),
			c.Writer.Status(),
			time.Since(startTime),
		)
	}
}
