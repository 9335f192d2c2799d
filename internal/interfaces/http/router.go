// Package http serves the screening API over gin.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/garnet-screening/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/garnet-screening/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/garnet-screening/internal/interfaces/http/handlers"
	"github.com/turtacn/garnet-screening/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware of the route tree.
// Nil members are skipped.
type RouterConfig struct {
	ScreeningHandler *handlers.ScreeningHandler
	HealthHandler    *handlers.HealthHandler
	RunsHandler      *handlers.RunsHandler

	Logger           logging.Logger
	MetricsCollector prometheus.MetricsCollector
	Metrics          *prometheus.ScreeningMetrics
	RateLimiter      middleware.RateLimiter

	// Mode is the gin mode: debug, release or test.
	Mode        string
	MaxBodySize int64
}

// NewRouter builds the engine: global middleware, public probes and
// /metrics, then the rate limited /api/v1 group.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			logging.Any("panic", recovered),
			logging.String("path", c.Request.URL.Path),
			logging.String("request_id", middleware.GetRequestID(c)))
		c.AbortWithStatusJSON(http.StatusInternalServerError, handlers.ErrorResponse{
			Code:    "INTERNAL",
			Message: "internal server error",
		})
	}))
	r.Use(middleware.RequestLogging(logger, middleware.DefaultLoggingConfig()))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}
	if cfg.MetricsCollector != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group("/api/v1")
	if cfg.RateLimiter != nil {
		api.Use(middleware.RateLimit(cfg.RateLimiter, middleware.DefaultRateLimitConfig()))
	}
	if cfg.MaxBodySize > 0 {
		api.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	if cfg.ScreeningHandler != nil {
		cfg.ScreeningHandler.RegisterRoutes(api)
	}
	if cfg.RunsHandler != nil {
		cfg.RunsHandler.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.ErrorResponse{Code: "NOT_FOUND", Message: "no such route"})
	})
	return r
}

//Personal.AI order the ending
