// Package kafka streams finished screening runs to a Kafka topic: one
// candidate event per ranked composition followed by a run-completed event,
// all keyed by run id so a run lands on a single partition in order.
package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/garnet-screening/internal/application/screening"
	"github.com/turtacn/garnet-screening/internal/config"
	"github.com/turtacn/garnet-screening/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/garnet-screening/pkg/errors"
)

var (
	ErrProducerClosed = errors.New(errors.ErrCodeInternal, "producer closed")
	ErrPublishFailed  = errors.New(errors.ErrCodeInternal, "publish failed")
)

// ProducerMetrics holds producer metrics.
type ProducerMetrics struct {
	MessagesSent   atomic.Int64
	MessagesFailed atomic.Int64
	BytesSent      atomic.Int64
	LastSentAt     atomic.Value // time.Time
	AvgLatencyMs   atomic.Int64
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.WriterStats
}

// Producer publishes screening results.  It implements screening.Sink.
type Producer struct {
	writer  WriterInterface
	config  config.KafkaConfig
	logger  logging.Logger
	closed  atomic.Bool
	metrics *ProducerMetrics
}

var _ screening.Sink = (*Producer)(nil)

// NewProducer builds a hash-balanced writer for cfg.Topic.
func NewProducer(cfg config.KafkaConfig, logger logging.Logger) (*Producer, error) {
	if err := ValidateProducerConfig(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxAttempts,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
		RequiredAcks: requiredAcks(cfg.RequiredAcks),
		Compression:  compression(cfg.Compression),
		Transport:    &kafka.Transport{DialTimeout: 10 * time.Second},
	}
	return NewProducerWithWriter(writer, cfg, logger), nil
}

// NewProducerWithWriter wraps an existing writer.
func NewProducerWithWriter(w WriterInterface, cfg config.KafkaConfig, logger logging.Logger) *Producer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Producer{writer: w, config: cfg, logger: logger, metrics: &ProducerMetrics{}}
}

// Zero selects leader acknowledgement.
func requiredAcks(n int) kafka.RequiredAcks {
	if n < 0 {
		return kafka.RequireAll
	}
	return kafka.RequireOne
}

func compression(codec string) kafka.Compression {
	switch codec {
	case "gzip":
		return kafka.Gzip
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Compression(0)
	}
}

// Name identifies the sink.
func (p *Producer) Name() string { return "kafka" }

// Publish writes every candidate of res and a closing run event in one batch.
func (p *Producer) Publish(ctx context.Context, res *screening.Result) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	msgs, err := Messages(res)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode screening events")
	}

	start := time.Now()
	err = p.writer.WriteMessages(ctx, msgs...)
	failed := 0
	if err != nil {
		if writeErrs, ok := err.(kafka.WriteErrors); ok {
			failed = writeErrs.Count()
		} else {
			failed = len(msgs)
		}
	}
	sent := len(msgs) - failed

	var bytes int64
	for _, m := range msgs {
		bytes += int64(len(m.Value))
	}
	p.metrics.MessagesSent.Add(int64(sent))
	p.metrics.MessagesFailed.Add(int64(failed))
	latency := time.Since(start).Milliseconds()
	p.metrics.AvgLatencyMs.Store(latency)

	if err != nil {
		p.logger.Warn("Screening events partially published",
			logging.String("run_id", res.RunID),
			logging.Int("succeeded", sent),
			logging.Int("failed", failed),
			logging.Err(err))
		return ErrPublishFailed.WithCause(err)
	}

	p.metrics.BytesSent.Add(bytes)
	p.metrics.LastSentAt.Store(time.Now())
	p.logger.Debug("Screening events published",
		logging.String("topic", p.config.Topic),
		logging.String("run_id", res.RunID),
		logging.Int("messages", len(msgs)),
		logging.Int64("latency_ms", latency))
	return nil
}

// Messages encodes res as candidate events followed by one run-completed
// event.  Every message is keyed by the run id.
func Messages(res *screening.Result) ([]kafka.Message, error) {
	key := []byte(res.RunID)
	meta := map[string]string{"run_id": res.RunID}
	msgs := make([]kafka.Message, 0, len(res.Candidates)+1)

	for i, c := range res.Candidates {
		env, err := NewEnvelope(EventCandidate, CandidatePayload{RunID: res.RunID, Position: i, Candidate: c}, meta)
		if err != nil {
			return nil, err
		}
		m, err := toMessage(key, env)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}

	env, err := NewEnvelope(EventRunCompleted, RunCompletedPayload{
		RunID:      res.RunID,
		Sites:      res.Sites,
		Counts:     res.Counts,
		Candidates: len(res.Candidates),
		Failures:   len(res.Failures),
		DurationMs: res.Duration.Milliseconds(),
	}, meta)
	if err != nil {
		return nil, err
	}
	m, err := toMessage(key, env)
	if err != nil {
		return nil, err
	}
	return append(msgs, m), nil
}

func toMessage(key []byte, env *EventEnvelope) (kafka.Message, error) {
	value, err := json.Marshal(env)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   key,
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "schema_version", Value: []byte(env.SchemaVersion)},
		},
		Time: env.Timestamp,
	}, nil
}

// MetricsSnapshot is a point-in-time copy of ProducerMetrics.
type MetricsSnapshot struct {
	MessagesSent   int64
	MessagesFailed int64
	BytesSent      int64
	LastSentAt     time.Time
	LatencyMs      int64
}

// GetMetrics returns metrics snapshot.
func (p *Producer) GetMetrics() MetricsSnapshot {
	m := MetricsSnapshot{
		MessagesSent:   p.metrics.MessagesSent.Load(),
		MessagesFailed: p.metrics.MessagesFailed.Load(),
		BytesSent:      p.metrics.BytesSent.Load(),
		LatencyMs:      p.metrics.AvgLatencyMs.Load(),
	}
	if t, ok := p.metrics.LastSentAt.Load().(time.Time); ok {
		m.LastSentAt = t
	}
	return m
}

// Close closes the producer.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("Kafka producer closed", logging.Int64("sent", p.metrics.MessagesSent.Load()))
	return err
}

func ValidateProducerConfig(cfg config.KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "Brokers required")
	}
	if cfg.Topic == "" {
		return errors.New(errors.ErrCodeValidation, "Topic required")
	}
	if cfg.MaxAttempts < 0 {
		return errors.New(errors.ErrCodeValidation, "MaxAttempts must be >= 0")
	}
	return nil
}

//Personal.AI order the ending
