// Package bootstrap assembles the screening service and its optional
// backends from a Config.  Both binaries build through it so the CLI and
// the API server share one wiring.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/turtacn/garnet-screening/internal/application/screening"
	"github.com/turtacn/garnet-screening/internal/config"
	"github.com/turtacn/garnet-screening/internal/domain/element"
	"github.com/turtacn/garnet-screening/internal/domain/tolerance"
	pgconn "github.com/turtacn/garnet-screening/internal/infrastructure/database/postgres"
	pgrepo "github.com/turtacn/garnet-screening/internal/infrastructure/database/postgres/repositories"
	redisclient "github.com/turtacn/garnet-screening/internal/infrastructure/database/redis"
	kafkaproducer "github.com/turtacn/garnet-screening/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/garnet-screening/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/garnet-screening/internal/infrastructure/monitoring/prometheus"
	minioclient "github.com/turtacn/garnet-screening/internal/infrastructure/storage/minio"
)

// Components is everything a binary needs to serve screening requests.
type Components struct {
	Config    *config.Config
	Logger    logging.Logger
	Table     *element.Table
	Collector prometheus.MetricsCollector // nil when metrics are disabled
	Metrics   *prometheus.ScreeningMetrics
	Service   screening.Service

	// Runs is set when the postgres sink is enabled.
	Runs *pgrepo.RunRepository
	// Exports is set when the minio sink is enabled.
	Exports *minioclient.ExportStore

	// HealthChecks probes every enabled backend, keyed by backend name.
	HealthChecks map[string]func(ctx context.Context) error

	closers []func() error
}

// Options overrides parts of the wiring, mainly for tests.
type Options struct {
	// Table replaces the dataset named by cfg.Properties.
	Table *element.Table
	// Sinks are appended after the configured ones.
	Sinks []screening.Sink
}

// Build opens the property table and every enabled backend.  A backend that
// fails to connect aborts the build and closes what was already opened.
func Build(cfg *config.Config, logger logging.Logger, opts Options) (*Components, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	c := &Components{
		Config:       cfg,
		Logger:       logger,
		HealthChecks: make(map[string]func(ctx context.Context) error),
	}

	c.Table = opts.Table
	if c.Table == nil {
		tbl, err := element.Open(cfg.Properties.Path)
		if err != nil {
			return nil, fmt.Errorf("properties: %w", err)
		}
		c.Table = tbl
	}
	logger.Info("Element table loaded",
		logging.Int("elements", c.Table.Len()),
		logging.String("path", cfg.Properties.Path))

	c.Metrics = prometheus.NewScreeningMetrics(nil)
	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		c.Collector = collector
		c.Metrics = prometheus.NewScreeningMetrics(collector)
	}

	svcOpts := []screening.Option{
		screening.WithMetrics(c.Metrics),
		screening.WithBand(tolerance.Band{
			Enabled: cfg.Screening.ToleranceBand.Enabled,
			Low:     cfg.Screening.ToleranceBand.Low,
			High:    cfg.Screening.ToleranceBand.High,
		}),
	}

	cache, err := c.openCache(cfg.Redis)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	if cache != nil {
		svcOpts = append(svcOpts, screening.WithCache(cache))
	}

	sinks, err := c.openSinks(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	sinks = append(sinks, opts.Sinks...)
	if len(sinks) > 0 {
		svcOpts = append(svcOpts, screening.WithSinks(sinks...))
	}

	c.Service = screening.NewService(c.Table, logger, svcOpts...)
	return c, nil
}

func (c *Components) openCache(cfg config.RedisConfig) (screening.ResultCache, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	client, err := redisclient.NewClient(cfg, c.Logger)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, client.Close)
	c.HealthChecks["redis"] = client.Ping

	var opts []redisclient.CacheOption
	if cfg.KeyPrefix != "" {
		opts = append(opts, redisclient.WithPrefix(cfg.KeyPrefix))
	}
	if cfg.DefaultTTL > 0 {
		opts = append(opts, redisclient.WithDefaultTTL(cfg.DefaultTTL))
	}
	return redisclient.NewResultCache(client, c.Logger, opts...), nil
}

// openSinks returns the enabled sinks in a fixed order: postgres, kafka,
// minio.
func (c *Components) openSinks(cfg *config.Config) ([]screening.Sink, error) {
	var sinks []screening.Sink

	if cfg.Database.Enabled {
		conn, err := pgconn.NewConnection(cfg.Database, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		c.closers = append(c.closers, conn.Close)
		if cfg.Database.AutoMigrate {
			if err := conn.RunMigrations(); err != nil {
				return nil, fmt.Errorf("postgres: %w", err)
			}
		}
		c.HealthChecks["postgres"] = conn.HealthCheck
		c.Runs = pgrepo.NewRunRepository(conn, c.Logger)
		sinks = append(sinks, c.Runs)
	}

	if cfg.Kafka.Enabled {
		producer, err := kafkaproducer.NewProducer(cfg.Kafka, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("kafka: %w", err)
		}
		c.closers = append(c.closers, producer.Close)
		sinks = append(sinks, producer)
	}

	if cfg.MinIO.Enabled {
		client, err := minioclient.NewMinIOClient(cfg.MinIO, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		c.closers = append(c.closers, client.Close)
		c.HealthChecks["minio"] = func(ctx context.Context) error {
			status, err := client.HealthCheck(ctx)
			if err != nil {
				return err
			}
			if !status.Healthy {
				return fmt.Errorf("%s", status.Error)
			}
			return nil
		}
		c.Exports = minioclient.NewExportStore(client, c.Logger)
		sinks = append(sinks, c.Exports)
	}

	return sinks, nil
}

// Close releases backends in reverse order of opening.  It is safe to call
// more than once.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.Logger.Warn("Failed to close backend", logging.Err(err))
		}
	}
	c.closers = nil
}

//Personal.AI order the ending
