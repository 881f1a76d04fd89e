package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"scentmatch-backend/internal/shared/metrics"
	"scentmatch-backend/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		metrics.ObserveHTTP(c.Request.Method, c.FullPath(), status)

		strategy, _ := c.Get("strategy")
		sessionToken, _ := c.Get("quizSessionToken")

		telemetry.Info("request.complete", map[string]any{
			"request_id":    RequestIDFromContext(c),
			"method":        c.Request.Method,
			"path":          c.Request.URL.Path,
			"status":        status,
			"duration_ms":   float64(latency.Microseconds()) / 1000.0,
			"user_id":       UserIDFromContext(c),
			"guest_id":      GuestIDFromContext(c),
			"is_guest":      IsGuest(c),
			"strategy":      strategy,
			"session_token": sessionToken,
			"client_ip":     c.ClientIP(),
			"user_agent":    c.Request.UserAgent(),
		})
	}
}
