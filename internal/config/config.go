// Package config defines the configuration structures of the garnet screening
// toolkit.  No I/O or parsing logic lives in this file, only plain data types
// and validation.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/garnet-screening/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Screening
// ─────────────────────────────────────────────────────────────────────────────

// SiteConfig describes one crystallographic site of the structure template.
// Elements lists explicit candidate symbols; when empty every element of the
// property table carrying Coordination is a candidate.
type SiteConfig struct {
	Name         string   `mapstructure:"name" json:"name"`
	Coordination string   `mapstructure:"coordination" json:"coordination"`
	Elements     []string `mapstructure:"elements" json:"elements,omitempty"`
}

// ToleranceBandConfig is the inclusive stability band for the tolerance factor.
type ToleranceBandConfig struct {
	Enabled bool    `mapstructure:"enabled" json:"enabled"`
	Low     float64 `mapstructure:"low" json:"low"`
	High    float64 `mapstructure:"high" json:"high"`
}

// ScreeningConfig holds the options of a screening run.
type ScreeningConfig struct {
	Sites                      []SiteConfig        `mapstructure:"sites"`
	StoichiometryConstraints   [][]int             `mapstructure:"stoichiometry_constraints"`
	SpeciesUnique              bool                `mapstructure:"species_unique"`
	ToleranceBand              ToleranceBandConfig `mapstructure:"tolerance_band"`
	WorkerCount                int                 `mapstructure:"worker_count"`
	ElectronegativityThreshold float64             `mapstructure:"electronegativity_threshold"`
	Score                      bool                `mapstructure:"score"`
	Tolerance                  bool                `mapstructure:"tolerance"`
	Rank                       string              `mapstructure:"rank"` // "sustainability" | "tolerance" | "pareto" | "none"
	Timeout                    time.Duration       `mapstructure:"timeout"`
	ItemTimeout                time.Duration       `mapstructure:"item_timeout"` // per composition; 0 disables
}

// PropertiesConfig points at an element dataset that replaces the embedded one.
type PropertiesConfig struct {
	Path string `mapstructure:"path"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Infrastructure
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// RateLimit is the sustained screening requests per second per client.
	// Zero disables limiting.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// DatabaseConfig holds PostgreSQL connection parameters for run persistence.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// RedisConfig holds Redis connection parameters for the result cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds producer parameters for candidate events.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	RequiredAcks int           `mapstructure:"required_acks"`
	Compression  string        `mapstructure:"compression"`
}

// MinIOConfig holds object storage parameters for export uploads.
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Screening  ScreeningConfig   `mapstructure:"screening"`
	Properties PropertiesConfig  `mapstructure:"properties"`
	Log        logging.LogConfig `mapstructure:"log"`
	Server     ServerConfig      `mapstructure:"server"`
	Metrics    MetricsConfig     `mapstructure:"metrics"`
	Database   DatabaseConfig    `mapstructure:"database"`
	Redis      RedisConfig       `mapstructure:"redis"`
	Kafka      KafkaConfig       `mapstructure:"kafka"`
	MinIO      MinIOConfig       `mapstructure:"minio"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of a fully-populated Config and
// returns the first error encountered.  Infrastructure sections are only
// checked when the corresponding sink is enabled.
func (c *Config) Validate() error {
	if err := c.Screening.Validate(); err != nil {
		return err
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("config: server.rate_limit must be >= 0, got %v", c.Server.RateLimit)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required")
		}
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("config: kafka.topic is required")
		}
	}
	if c.MinIO.Enabled {
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required")
		}
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.bucket is required")
		}
	}
	return nil
}

// Validate checks the screening section on its own; the CLI calls it after
// applying flag overrides.
func (s *ScreeningConfig) Validate() error {
	if len(s.Sites) == 0 {
		return fmt.Errorf("config: screening.sites must not be empty")
	}
	for i, site := range s.Sites {
		if site.Name == "" {
			return fmt.Errorf("config: screening.sites[%d].name is required", i)
		}
		if site.Coordination == "" && len(site.Elements) == 0 {
			return fmt.Errorf("config: screening.sites[%d] needs a coordination tag or an element list", i)
		}
	}
	if len(s.StoichiometryConstraints) != len(s.Sites) {
		return fmt.Errorf("config: screening.stoichiometry_constraints has %d entries for %d sites",
			len(s.StoichiometryConstraints), len(s.Sites))
	}
	for i, coeffs := range s.StoichiometryConstraints {
		if len(coeffs) == 0 {
			return fmt.Errorf("config: screening.stoichiometry_constraints[%d] is empty", i)
		}
		for _, c := range coeffs {
			if c < 1 {
				return fmt.Errorf("config: screening.stoichiometry_constraints[%d] contains non-positive coefficient %d", i, c)
			}
		}
	}
	if s.WorkerCount < 1 {
		return fmt.Errorf("config: screening.worker_count must be >= 1, got %d", s.WorkerCount)
	}
	if s.ItemTimeout < 0 {
		return fmt.Errorf("config: screening.item_timeout must be >= 0, got %s", s.ItemTimeout)
	}
	if s.ToleranceBand.Enabled {
		if s.ToleranceBand.Low < 0 || s.ToleranceBand.Low > s.ToleranceBand.High {
			return fmt.Errorf("config: screening.tolerance_band [%g, %g] is invalid",
				s.ToleranceBand.Low, s.ToleranceBand.High)
		}
	}
	switch s.Rank {
	case "sustainability", "tolerance", "pareto", "none":
	default:
		return fmt.Errorf("config: screening.rank %q is invalid; expected sustainability|tolerance|pareto|none", s.Rank)
	}
	return nil
}

//Personal.AI order the ending
