package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coopcare/admin-api/internal/config"
	"github.com/coopcare/admin-api/internal/handler/health"
	"github.com/coopcare/admin-api/internal/middleware"
	"github.com/coopcare/admin-api/pkg/logger"
	"github.com/coopcare/admin-api/pkg/metrics"
)

// Handler is anything that can hang its routes off the API group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine *gin.Engine
}

// NewRouter wires middleware and routes. Everything under /api/v1
// except /auth requires a valid token.
func NewRouter(
	cfg *config.Config,
	log *logger.Logger,
	m *metrics.Metrics,
	authMW *middleware.AuthMiddleware,
	healthH *health.Handler,
	authH Handler,
	protected []Handler,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.Logger(log),
		middleware.Metrics(m),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst).Middleware(),
		middleware.Timeout(time.Duration(cfg.Server.TimeoutSeconds)*time.Second),
	)

	healthH.RegisterRoutes(engine)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api/v1")
	authH.RegisterRoutes(api)

	secured := api.Group("")
	secured.Use(authMW.Authenticate())
	for _, h := range protected {
		h.RegisterRoutes(secured)
	}

	return &Router{engine: engine}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
