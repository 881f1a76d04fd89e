package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scentmatch-backend/internal/collections"
	"scentmatch-backend/internal/fragrances"
	"scentmatch-backend/internal/quiz"
	"scentmatch-backend/internal/recommendations"
	"scentmatch-backend/internal/services/health"
	"scentmatch-backend/internal/shared/config"
	"scentmatch-backend/internal/shared/metrics"
	"scentmatch-backend/internal/shared/server/middleware"
	"scentmatch-backend/internal/shared/server/respond"
	"scentmatch-backend/internal/users"
)

const recommendGroup = "RECOMMEND"

// RouterDeps holds prebuilt handlers; nil handlers are skipped.
type RouterDeps struct {
	Config                config.Config
	Verifier              middleware.TokenVerifier
	Limiter               middleware.Limiter
	Health                *health.Service
	RecommendationHandler *recommendations.Handler
	QuizHandler           *quiz.Handler
	FragranceHandler      *fragrances.Handler
	CollectionHandler     *collections.Handler
	UserHandler           *users.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.IsDevLike() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Verifier),
		middleware.RateLimit(rateLimitConfig(deps)),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		report := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})

	if deps.RecommendationHandler != nil {
		deps.RecommendationHandler.RegisterRoutes(api)
	}
	if deps.QuizHandler != nil {
		deps.QuizHandler.RegisterRoutes(api)
	}
	if deps.FragranceHandler != nil {
		deps.FragranceHandler.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.CollectionHandler != nil {
		deps.CollectionHandler.RegisterRoutes(api.Group("", middleware.RequireUser()))
	}

	return r
}

func rateLimitConfig(deps RouterDeps) middleware.RateLimitConfig {
	rps := deps.Config.RateLimitRPS
	if rps <= 0 {
		rps = 2
	}
	burst := deps.Config.RateLimitBurst
	if burst <= 0 {
		burst = 10
	}
	return middleware.RateLimitConfig{
		DefaultGroup: "DEFAULT",
		Limiter:      deps.Limiter,
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT":      {Rate: rps * 5, Burst: burst * 3},
			recommendGroup: {Rate: rps, Burst: burst},
		},
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/recommendations" {
				return recommendGroup
			}
			return "DEFAULT"
		},
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
