package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/garnet-screening/internal/application/screening"
	"github.com/turtacn/garnet-screening/internal/config"
	"github.com/turtacn/garnet-screening/internal/testutil"
)

type recordingSink struct {
	runs []string
	err  error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Publish(_ context.Context, res *screening.Result) error {
	s.runs = append(s.runs, res.RunID)
	return s.err
}

func baseConfig() *config.Config {
	cfg := config.Default()
	cfg.Metrics.Enabled = false
	cfg.Screening.WorkerCount = 2
	return cfg
}

func TestBuild_NoBackends(t *testing.T) {
	sink := &recordingSink{}
	c, err := Build(baseConfig(), testutil.NewMockLogger(), Options{
		Table: testutil.ElementTable(t),
		Sinks: []screening.Sink{sink},
	})
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.Collector)
	assert.Nil(t, c.Runs)
	assert.Nil(t, c.Exports)
	assert.Empty(t, c.HealthChecks)

	res, err := c.Service.Run(context.Background(), screening.RequestFromConfig(c.Config.Screening))
	require.NoError(t, err)
	assert.Equal(t, 4, res.Counts.Stable)
	assert.Equal(t, []string{res.RunID}, sink.runs)
}

func TestBuild_EmbeddedTable(t *testing.T) {
	c, err := Build(baseConfig(), nil, Options{})
	require.NoError(t, err)
	defer c.Close()
	assert.Positive(t, c.Table.Len())
}

func TestBuild_MetricsEnabled(t *testing.T) {
	cfg := baseConfig()
	cfg.Metrics.Enabled = true
	c, err := Build(cfg, nil, Options{Table: testutil.ElementTable(t)})
	require.NoError(t, err)
	defer c.Close()

	require.NotNil(t, c.Collector)
	_, err = c.Service.Run(context.Background(), screening.RequestFromConfig(cfg.Screening))
	require.NoError(t, err)

	families, err := c.Collector.Gatherer().Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["gscreen_runs_total"])
	assert.True(t, names["gscreen_compositions_total"])
}

func TestBuild_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()
	cfg.Redis.KeyPrefix = "test:"
	cfg.Redis.DefaultTTL = time.Minute

	sink := &recordingSink{}
	c, err := Build(cfg, nil, Options{Table: testutil.ElementTable(t), Sinks: []screening.Sink{sink}})
	require.NoError(t, err)
	defer c.Close()

	require.Contains(t, c.HealthChecks, "redis")
	assert.NoError(t, c.HealthChecks["redis"](context.Background()))

	req := screening.RequestFromConfig(cfg.Screening)
	first, err := c.Service.Run(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Len(t, mr.Keys(), 1)
	assert.Contains(t, mr.Keys()[0], "test:")

	second, err := c.Service.Run(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Len(t, sink.runs, 1)
}

func TestBuild_RedisUnreachable(t *testing.T) {
	cfg := baseConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = "127.0.0.1:1"
	cfg.Redis.DialTimeout = 200 * time.Millisecond

	_, err := Build(cfg, nil, Options{Table: testutil.ElementTable(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}

func TestBuild_PostgresUnreachableClosesOpened(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()
	cfg.Database.Enabled = true
	cfg.Database.Host = "127.0.0.1"
	cfg.Database.Port = 1

	logger := testutil.NewMockLogger()
	_, err := Build(cfg, logger, Options{Table: testutil.ElementTable(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
	assert.True(t, logger.HasMessage("info", "Closed Redis client"))
}

func TestBuild_KafkaProducer(t *testing.T) {
	cfg := baseConfig()
	cfg.Kafka.Enabled = true
	cfg.Kafka.Brokers = nil

	_, err := Build(cfg, nil, Options{Table: testutil.ElementTable(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka")

	// The writer dials lazily, so a configured producer builds offline.
	cfg.Kafka.Brokers = []string{"127.0.0.1:1"}
	c, err := Build(cfg, nil, Options{Table: testutil.ElementTable(t)})
	require.NoError(t, err)
	c.Close()
	c.Close()
}

func TestBuild_SinkErrorsAreNotFatal(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	c, err := Build(baseConfig(), nil, Options{Table: testutil.ElementTable(t), Sinks: []screening.Sink{sink}})
	require.NoError(t, err)
	defer c.Close()

	res, err := c.Service.Run(context.Background(), screening.RequestFromConfig(c.Config.Screening))
	require.NoError(t, err)
	require.Len(t, res.SinkErrors, 1)
	assert.Contains(t, res.SinkErrors[0], "recording")
}
