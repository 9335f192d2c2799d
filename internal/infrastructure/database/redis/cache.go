// Package redis provides the Redis-backed result cache.  Finished screening
// results are stored as JSON under prefix + "result:" + request digest.
package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/garnet-screening/internal/application/screening"
	"github.com/turtacn/garnet-screening/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/garnet-screening/pkg/errors"
)

var ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "serialization failed")

// Serializer encodes cached values.
type Serializer interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

type jsonSerializer struct{}

func (jsonSerializer) Marshal(v interface{}) ([]byte, error)      { return json.Marshal(v) }
func (jsonSerializer) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }

// ResultCache implements screening.ResultCache on Redis.
type ResultCache struct {
	client     *Client
	logger     logging.Logger
	prefix     string
	defaultTTL time.Duration
	jitter     float64
	serializer Serializer
}

var _ screening.ResultCache = (*ResultCache)(nil)

type CacheOption func(*ResultCache)

func WithPrefix(prefix string) CacheOption {
	return func(c *ResultCache) { c.prefix = prefix }
}

func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *ResultCache) { c.defaultTTL = ttl }
}

// WithJitter spreads expiry by +/- fraction of the TTL.  Zero disables it.
func WithJitter(fraction float64) CacheOption {
	return func(c *ResultCache) { c.jitter = fraction }
}

func WithSerializer(s Serializer) CacheOption {
	return func(c *ResultCache) { c.serializer = s }
}

// NewResultCache creates a cache over client.
func NewResultCache(client *Client, log logging.Logger, opts ...CacheOption) *ResultCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &ResultCache{
		client:     client,
		logger:     log,
		prefix:     "gscreen:",
		defaultTTL: time.Hour,
		jitter:     0.1,
		serializer: jsonSerializer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ResultCache) fullKey(key string) string {
	return c.prefix + "result:" + key
}

func (c *ResultCache) jitterTTL(ttl time.Duration) time.Duration {
	if ttl == 0 || c.jitter == 0 {
		return ttl
	}
	delta := float64(ttl) * c.jitter * (rand.Float64()*2 - 1)
	return ttl + time.Duration(delta)
}

// Get returns the cached result for key.  A miss is (nil, false, nil).
func (c *ResultCache) Get(ctx context.Context, key string) (*screening.Result, bool, error) {
	data, err := c.client.Get(ctx, c.fullKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to get from cache")
	}
	var res screening.Result
	if err := c.serializer.Unmarshal(data, &res); err != nil {
		c.logger.Warn("Dropping undecodable cache entry", logging.String("key", key), logging.Err(err))
		return nil, false, nil
	}
	return &res, true, nil
}

// Set stores res under key with the default TTL.
func (c *ResultCache) Set(ctx context.Context, key string, res *screening.Result) error {
	data, err := c.serializer.Marshal(res)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	if err := c.client.Set(ctx, c.fullKey(key), string(data), c.jitterTTL(c.defaultTTL)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to set cache")
	}
	return nil
}

// Invalidate removes cached results.
func (c *ResultCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.fullKey(k)
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to delete from cache")
	}
	return nil
}

// Exists reports whether key is cached.
func (c *ResultCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.fullKey(key)).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to check cache")
	}
	return n > 0, nil
}

//Personal.AI order the ending
