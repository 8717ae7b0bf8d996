package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"jobmatch-backend/internal/shared/telemetry"
)

// Context keys handlers set so the access log can report match details.
const (
	JobIDKey       = "jobId"
	MatchIDKey     = "matchId"
	MatchSourceKey = "matchSource"
	MatchCachedKey = "matchCached"
)

// Logging emits one structured line per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"subject_id":  UserIDFromContext(c),
			"is_guest":    IsGuest(c),
			"client_ip":   c.ClientIP(),
		}
		for key, field := range map[string]string{
			JobIDKey:       "job_id",
			MatchIDKey:     "match_id",
			MatchSourceKey: "source",
		} {
			if v := c.GetString(key); v != "" {
				fields[field] = v
			}
		}
		if cached, ok := c.Get(MatchCachedKey); ok {
			fields["cached"] = cached
		}
		telemetry.Info("request.complete", fields)
	}
}
