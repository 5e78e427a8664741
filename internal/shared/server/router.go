package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	"trackjob-backend/internal/shared/config"
	"trackjob-backend/internal/shared/metrics"
	"trackjob-backend/internal/shared/server/middleware"
)

const uploadRateGroup = "UPLOAD"

// RouteRegistrar is implemented by every feature handler.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries the handlers mounted on the engine.
type RouterDeps struct {
	Config   config.Config
	Handlers []RouteRegistrar
	// Objects serves signed object URLs for the local gateway. Nil for remote stores.
	Objects interface{ RegisterRoutes(gin.IRoutes) }
	Limiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.AuthJWTSecret, "/", "/health", "/metrics", "/objects/"),
		// After Auth so verified callers get a bucket per subject, not per IP.
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT":       {Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst},
				uploadRateGroup: {Rate: cfg.UploadRateLimitRPS, Burst: cfg.UploadRateLimitBurst},
			},
			GroupFor: rateGroup,
			Limiter:  deps.Limiter,
		}),
	)

	r.GET("/metrics", metrics.Handler())
	if deps.Objects != nil {
		deps.Objects.RegisterRoutes(r)
	}

	root := r.Group("")
	registerMeRoutes(root)
	for _, h := range deps.Handlers {
		if h != nil {
			h.RegisterRoutes(root)
		}
	}

	return r
}

func rateGroup(c *gin.Context) string {
	if strings.HasPrefix(c.Request.URL.Path, "/documents/upload-url") {
		return uploadRateGroup
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":3000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
