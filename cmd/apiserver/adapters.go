package main

import (
	"github.com/turtacn/garnet-screening/internal/application/screening"
	"github.com/turtacn/garnet-screening/internal/bootstrap"
	"github.com/turtacn/garnet-screening/internal/config"
	"github.com/turtacn/garnet-screening/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/garnet-screening/internal/interfaces/http"
	"github.com/turtacn/garnet-screening/internal/interfaces/http/handlers"
	"github.com/turtacn/garnet-screening/internal/interfaces/http/middleware"
)

// routerConfig adapts the bootstrapped components to the router.  A nil
// limiter disables rate limiting.
func routerConfig(cfg *config.Config, c *bootstrap.Components, sh *handlers.ScreeningHandler,
	hh *handlers.HealthHandler, limiter *middleware.TokenBucketLimiter, logger logging.Logger) httpserver.RouterConfig {
	rc := httpserver.RouterConfig{
		ScreeningHandler: sh,
		HealthHandler:    hh,
		Logger:           logger,
		MetricsCollector: c.Collector,
		Mode:             cfg.Server.Mode,
		MaxBodySize:      cfg.Server.MaxBodySize,
	}
	if c.Collector != nil {
		rc.Metrics = c.Metrics
	}
	if limiter != nil {
		rc.RateLimiter = limiter
	}
	rc.RunsHandler = runsHandler(c)
	return rc
}

// runsHandler exposes the postgres and minio sinks for reading back.  It is
// nil when neither is enabled.
func runsHandler(c *bootstrap.Components) *handlers.RunsHandler {
	var runs handlers.RunStore
	var exports handlers.ExportLinker
	if c.Runs != nil {
		runs = c.Runs
	}
	if c.Exports != nil {
		exports = c.Exports
	}
	if runs == nil && exports == nil {
		return nil
	}
	return handlers.NewRunsHandler(runs, exports)
}

// reloader applies an edited config file to the running server.  Only the
// default screening run and the log level are hot; backends and the listen
// address need a restart.
type reloader struct {
	handler *handlers.ScreeningHandler
	logger  logging.Logger
}

func newReloader(h *handlers.ScreeningHandler, logger logging.Logger) *reloader {
	return &reloader{handler: h, logger: logger}
}

// Apply is the config.Watch callback.
func (r *reloader) Apply(cfg *config.Config) {
	r.handler.SetBase(screening.RequestFromConfig(cfg.Screening))
	if logging.SetLevel(r.logger, cfg.Log.Level) {
		r.logger.Info("Log level updated", logging.String("level", cfg.Log.Level))
	}
}

//Personal.AI order the ending
