package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobmatch-backend/internal/services/health"
	"jobmatch-backend/internal/shared/config"
	"jobmatch-backend/internal/shared/metrics"
	"jobmatch-backend/internal/shared/server/middleware"
	"jobmatch-backend/internal/shared/server/respond"
)

// RouteRegistrar attaches a feature's routes to an authenticated group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps holds everything NewRouter wires.
type RouterDeps struct {
	Config   config.Config
	Verifier middleware.TokenVerifier
	Match    RouteRegistrar
	Health   *health.Service
	// Limiter is shared across requests; nil builds a fresh one.
	Limiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if !deps.Config.IsDevLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", healthHandler(deps.Health))

	authed := api.Group("")
	authed.Use(
		middleware.Auth(deps.Verifier),
		middleware.RateLimit(rateLimitConfig(deps)),
	)
	registerMeRoutes(authed)
	if deps.Match != nil {
		deps.Match.RegisterRoutes(authed)
	}

	return r
}

func rateLimitConfig(deps RouterDeps) middleware.RateLimitConfig {
	rules := map[string]middleware.RateLimitRule{
		middleware.DefaultRateLimitGroup: {Rate: 5, Burst: 20},
	}
	if perMinute := deps.Config.MatchRatePerMinute; perMinute > 0 {
		rules[middleware.MatchRateLimitGroup] = middleware.RateLimitRule{Rate: float64(perMinute) / 60.0, Burst: perMinute}
	}
	return middleware.RateLimitConfig{
		Rules:        rules,
		DefaultGroup: middleware.DefaultRateLimitGroup,
		Limiter:      deps.Limiter,
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/match" {
				return middleware.MatchRateLimitGroup
			}
			return middleware.DefaultRateLimitGroup
		},
	}
}

func healthHandler(svc *health.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if svc == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		report := svc.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
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
