// Command apiserver serves the screening API over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/garnet-screening/internal/application/screening"
	"github.com/turtacn/garnet-screening/internal/bootstrap"
	"github.com/turtacn/garnet-screening/internal/config"
	"github.com/turtacn/garnet-screening/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/garnet-screening/internal/interfaces/cli"
	httpserver "github.com/turtacn/garnet-screening/internal/interfaces/http"
	"github.com/turtacn/garnet-screening/internal/interfaces/http/handlers"
	"github.com/turtacn/garnet-screening/internal/interfaces/http/middleware"
)

const rateLimitCleanup = 5 * time.Minute

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	port := flag.Int("port", 0, "HTTP server port (overrides server.port)")
	flag.Parse()

	if err := run(*configPath, *port); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, port int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	logger.Info("Starting garnet screening API server",
		logging.String("version", cli.Version),
		logging.Int("port", cfg.Server.Port),
		logging.String("config", configPath))

	components, err := bootstrap.Build(cfg, logger, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer components.Close()

	screeningHandler := handlers.NewScreeningHandler(components.Service, screening.RequestFromConfig(cfg.Screening), logger)
	healthHandler := handlers.NewHealthHandler(cli.Version, handlers.ChecksFromMap(components.HealthChecks)...)

	var limiter *middleware.TokenBucketLimiter
	if cfg.Server.RateLimit > 0 {
		limiter = middleware.NewTokenBucketLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst, rateLimitCleanup)
		defer limiter.Stop()
	}

	router := httpserver.NewRouter(routerConfig(cfg, components, screeningHandler, healthHandler, limiter, logger))
	server := httpserver.NewServer(cfg.Server, router, logger)

	if configPath != "" {
		config.Watch(configPath, newReloader(screeningHandler, logger).Apply)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", logging.String("addr", server.Addr()))
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("Shutdown signal received", logging.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	if err := server.Stop(context.Background()); err != nil {
		logger.Error("HTTP server shutdown error", logging.Err(err))
		return err
	}
	logger.Info("Server stopped")
	return nil
}

//Personal.AI order the ending
