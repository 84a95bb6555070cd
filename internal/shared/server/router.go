package server

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"legal-backend/internal/shared/config"
	"legal-backend/internal/shared/metrics"
	"legal-backend/internal/shared/server/middleware"
	"legal-backend/internal/shared/server/respond"
	"legal-backend/internal/shared/storage/db"
	"legal-backend/internal/shared/telemetry"
)

const readyTimeout = 2 * time.Second

// RouteRegistrar attaches a feature's routes to the API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps are the pieces NewRouter wires together.
type RouterDeps struct {
	Config config.Config
	// DB is checked by /readyz when set.
	DB       *sql.DB
	Handlers []RouteRegistrar
	Limiter  *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if !deps.Config.IsDevLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	// The rate limiter keys on the client address, so forwarded headers
	// count only from configured proxies.
	if err := r.SetTrustedProxies(deps.Config.TrustedProxies); err != nil {
		telemetry.Warn("server.trusted_proxies_invalid", map[string]any{"error": err})
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/healthz", func(c *gin.Context) {
		respond.OK(c, gin.H{"ok": true})
	})
	r.GET("/readyz", readyHandler(deps.DB))
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1",
		middleware.Identity(deps.Config.IsDevLike()),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    middleware.DefaultRules(deps.Config.RateLimitRPS, deps.Config.RateLimitBurst),
			GroupFor: middleware.AnalysisGroup,
			Limiter:  deps.Limiter,
		}),
	)
	for _, h := range deps.Handlers {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}

	return r
}

func readyHandler(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if database == nil {
			respond.OK(c, gin.H{"ok": true, "database": "memory"})
			return
		}
		if err := db.Ping(c.Request.Context(), database, readyTimeout); err != nil {
			respond.Error(c, http.StatusServiceUnavailable, "not_ready", "database unavailable", nil)
			return
		}
		respond.OK(c, gin.H{"ok": true, "database": "postgres"})
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
