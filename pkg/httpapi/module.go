package httpapi

import (
	"net/http"
	"time"

	"autotasking/pkg/config"
	"autotasking/pkg/health"
	"autotasking/pkg/middleware"
	"autotasking/pkg/session"

	"github.com/casbin/casbin/v2"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("httpapi",
	fx.Provide(NewRouter),
	fx.Invoke(registerHealthEndpoint),
)

// Router exposes the engine plus the two /api groups services mount on.
// Public skips authentication; API requires an identity allowed by policy.
type Router struct {
	Engine *gin.Engine
	Public *gin.RouterGroup
	API    *gin.RouterGroup
}

type RouterParams struct {
	fx.In
	Config   *config.Config
	Sessions *session.Manager
	Enforcer *casbin.Enforcer
}

func NewRouter(p RouterParams) *Router {
	if p.Config.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(),
		cors.New(corsConfig(p.Config)),
		middleware.Error(),
	)

	return &Router{
		Engine: engine,
		Public: engine.Group("/api"),
		API:    engine.Group("/api", middleware.Authenticate(p.Sessions), middleware.Authorize(p.Enforcer)),
	}
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.Server.AllowOrigins) > 0 {
		c.AllowOrigins = cfg.Server.AllowOrigins
	} else {
		c.AllowOriginFunc = func(string) bool { return false }
	}
	return c
}

func registerHealthEndpoint(r *Router, h health.HealthService) {
	r.Engine.GET("/healthz", h.Liveness)
	r.Engine.GET("/readyz", h.Readiness)
}
