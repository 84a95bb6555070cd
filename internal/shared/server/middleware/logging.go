package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"legal-backend/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log.
const (
	DocumentIDKey = "documentId"
	AnalysisIDKey = "analysisId"
	OutcomeKey    = "outcome"
)

// Logging emits one structured http.request line per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
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
			"user_id":     UserIDFromContext(c),
			"is_guest":    IsGuest(c),
			"client_ip":   c.ClientIP(),
		}
		for _, key := range []string{DocumentIDKey, AnalysisIDKey, OutcomeKey} {
			if v := c.GetString(key); v != "" {
				fields[logKey(key)] = v
			}
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		telemetry.Info("http.request", fields)
	}
}

func logKey(contextKey string) string {
	switch contextKey {
	case DocumentIDKey:
		return "document_id"
	case AnalysisIDKey:
		return "analysis_id"
	default:
		return contextKey
	}
}
