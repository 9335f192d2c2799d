package config

import (
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultToleranceLow  = 0.748
	DefaultToleranceHigh = 1.333
	DefaultRank          = "sustainability"
	DefaultTimeout       = 10 * time.Minute

	DefaultServerPort            = 8080
	DefaultServerMode            = "release"
	DefaultServerReadTimeout     = 30 * time.Second
	DefaultServerWriteTimeout    = 10 * time.Minute
	DefaultServerMaxBodySize     = 1 << 20
	DefaultServerShutdownTimeout = 15 * time.Second

	DefaultMetricsNamespace = "gscreen"
	DefaultMetricsPath      = "/metrics"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "gscreen"
	DefaultDBMaxConns = 10

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisTTL       = 24 * time.Hour
	DefaultRedisKeyPrefix = "gscreen:"

	DefaultKafkaBroker = "localhost:9092"
	DefaultKafkaTopic  = "garnet.candidates"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "gscreen-exports"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// GarnetSites returns the A3B2Li3O12 site template: dodecahedral A, octahedral
// B, tetrahedral lithium and the oxide anion.
func GarnetSites() []SiteConfig {
	return []SiteConfig{
		{Name: "A", Coordination: "8"},
		{Name: "B", Coordination: "6"},
		{Name: "C", Coordination: "4", Elements: []string{"Li"}},
		{Name: "D", Coordination: "4", Elements: []string{"O"}},
	}
}

// GarnetConstraints returns the A3B2Li3O12 stoichiometry.
func GarnetConstraints() [][]int {
	return [][]int{{3}, {2}, {3}, {12}}
}

// Default returns a complete Config with every default applied, including the
// boolean switches that ApplyDefaults cannot infer from zero values.
func Default() *Config {
	cfg := &Config{}
	cfg.Screening.SpeciesUnique = true
	cfg.Screening.Score = true
	cfg.Screening.Tolerance = true
	cfg.Screening.ToleranceBand.Enabled = true
	cfg.Metrics.Enabled = true
	cfg.Database.AutoMigrate = true
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with its default.  Fields
// already set are left unchanged.  Booleans are not touched; the loader sets
// them through viper defaults and Default() sets them for in-code configs.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Screening ─────────────────────────────────────────────────────────────
	s := &cfg.Screening
	if len(s.Sites) == 0 {
		s.Sites = GarnetSites()
	}
	if len(s.StoichiometryConstraints) == 0 {
		s.StoichiometryConstraints = GarnetConstraints()
	}
	if s.WorkerCount == 0 {
		s.WorkerCount = runtime.NumCPU()
	}
	if s.ToleranceBand.Low == 0 && s.ToleranceBand.High == 0 {
		s.ToleranceBand.Low = DefaultToleranceLow
		s.ToleranceBand.High = DefaultToleranceHigh
	}
	if s.Rank == "" {
		s.Rank = DefaultRank
	}
	if s.Timeout == 0 {
		s.Timeout = DefaultTimeout
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultServerMaxBodySize
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}
	if cfg.Server.RateLimit > 0 && cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = int(cfg.Server.RateLimit) + 1
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// setViperDefaults registers defaults with viper so that AutomaticEnv can bind
// GSCREEN_* variables for keys absent from the config file, and so that
// boolean switches default to true.
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("screening.species_unique", true)
	v.SetDefault("screening.score", true)
	v.SetDefault("screening.tolerance", true)
	v.SetDefault("screening.tolerance_band.enabled", true)
	v.SetDefault("screening.tolerance_band.low", DefaultToleranceLow)
	v.SetDefault("screening.tolerance_band.high", DefaultToleranceHigh)
	v.SetDefault("screening.worker_count", 0)
	v.SetDefault("screening.electronegativity_threshold", 0.0)
	v.SetDefault("screening.rank", DefaultRank)
	v.SetDefault("screening.timeout", DefaultTimeout)

	v.SetDefault("properties.path", "")

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.mode", DefaultServerMode)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)
	v.SetDefault("metrics.path", DefaultMetricsPath)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", DefaultDBHost)
	v.SetDefault("database.port", DefaultDBPort)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.db_name", DefaultDBName)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", DefaultRedisAddr)
	v.SetDefault("redis.password", "")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{DefaultKafkaBroker})
	v.SetDefault("kafka.topic", DefaultKafkaTopic)

	v.SetDefault("minio.enabled", false)
	v.SetDefault("minio.endpoint", DefaultMinIOEndpoint)
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", DefaultMinIOBucket)
}

//Personal.AI order the ending
