package prometheus

import (
	"strconv"
	"time"

	"github.com/turtacn/garnet-screening/internal/common/batch"
)

// Screening stage label values.
const (
	StageGenerated               = "generated"
	StageChargeNeutral           = "charge_neutral"
	StageElectronegativityPassed = "electronegativity_passed"
	StageUnique                  = "unique"
	StageStable                  = "stable"
)

// Default buckets.
var (
	DefaultRunDurationBuckets  = []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300, 900}
	DefaultItemDurationBuckets = []float64{.00001, .0001, .001, .01, .1, 1}
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 60}
)

// ScreeningMetrics holds every metric the toolkit records.
type ScreeningMetrics struct {
	CompositionsTotal CounterVec   // stage
	FailuresTotal     CounterVec   // phase
	RunsTotal         CounterVec   // status
	RunDuration       HistogramVec // status
	ActiveWorkers     GaugeVec     // pool
	ItemDuration      HistogramVec // pool, status
	SinkErrorsTotal   CounterVec   // sink
	CacheLookupsTotal CounterVec   // result

	HTTPRequestsTotal   CounterVec   // method, path, status
	HTTPRequestDuration HistogramVec // method, path
}

// NewScreeningMetrics registers all metrics on c.  A nil collector yields
// no-op metrics, which is what the CLI uses when metrics are disabled.
func NewScreeningMetrics(c MetricsCollector) *ScreeningMetrics {
	if c == nil {
		return &ScreeningMetrics{
			CompositionsTotal:   noopCounterVec{},
			FailuresTotal:       noopCounterVec{},
			RunsTotal:           noopCounterVec{},
			RunDuration:         noopHistogramVec{},
			ActiveWorkers:       noopGaugeVec{},
			ItemDuration:        noopHistogramVec{},
			SinkErrorsTotal:     noopCounterVec{},
			CacheLookupsTotal:   noopCounterVec{},
			HTTPRequestsTotal:   noopCounterVec{},
			HTTPRequestDuration: noopHistogramVec{},
		}
	}
	return &ScreeningMetrics{
		CompositionsTotal: c.RegisterCounter("compositions_total",
			"Compositions counted at each screening stage.", "stage"),
		FailuresTotal: c.RegisterCounter("candidate_failures_total",
			"Candidates whose evaluation failed.", "phase"),
		RunsTotal: c.RegisterCounter("runs_total",
			"Screening runs by final status.", "status"),
		RunDuration: c.RegisterHistogram("run_duration_seconds",
			"Wall time of screening runs.", DefaultRunDurationBuckets, "status"),
		ActiveWorkers: c.RegisterGauge("active_workers",
			"Worker goroutines currently processing an item.", "pool"),
		ItemDuration: c.RegisterHistogram("item_duration_seconds",
			"Per-item processing time in the worker pool.", DefaultItemDurationBuckets, "pool", "status"),
		SinkErrorsTotal: c.RegisterCounter("sink_errors_total",
			"Failures writing results to an output sink.", "sink"),
		CacheLookupsTotal: c.RegisterCounter("cache_lookups_total",
			"Result cache lookups by outcome.", "result"),
		HTTPRequestsTotal: c.RegisterCounter("http_requests_total",
			"HTTP requests by method, route and status.", "method", "path", "status"),
		HTTPRequestDuration: c.RegisterHistogram("http_request_duration_seconds",
			"HTTP request latency.", DefaultHTTPDurationBuckets, "method", "path"),
	}
}

// RecordStage adds n compositions to stage.
func (m *ScreeningMetrics) RecordStage(stage string, n int) {
	if n > 0 {
		m.CompositionsTotal.WithLabelValues(stage).Add(float64(n))
	}
}

// RecordFailures adds n failures for phase ("screen", "evaluate").
func (m *ScreeningMetrics) RecordFailures(phase string, n int) {
	if n > 0 {
		m.FailuresTotal.WithLabelValues(phase).Add(float64(n))
	}
}

// RecordRun counts a finished run and observes its duration.
func (m *ScreeningMetrics) RecordRun(status string, d time.Duration) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.WithLabelValues(status).Observe(d.Seconds())
}

// RecordSinkError counts a failed sink write.
func (m *ScreeningMetrics) RecordSinkError(sink string) {
	m.SinkErrorsTotal.WithLabelValues(sink).Inc()
}

// RecordCacheLookup counts a cache hit or miss.
func (m *ScreeningMetrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordHTTPRequest counts and times one HTTP request.
func (m *ScreeningMetrics) RecordHTTPRequest(method, path string, status int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// WorkerObserver returns a batch.Observer that tracks the active worker gauge
// and item latency for pool.
func (m *ScreeningMetrics) WorkerObserver(pool string) batch.Observer {
	return workerObserver{m: m, pool: pool}
}

type workerObserver struct {
	m    *ScreeningMetrics
	pool string
}

func (o workerObserver) ItemStarted() {
	o.m.ActiveWorkers.WithLabelValues(o.pool).Inc()
}

func (o workerObserver) ItemFinished(status batch.ItemStatus, elapsed time.Duration) {
	o.m.ActiveWorkers.WithLabelValues(o.pool).Dec()
	o.m.ItemDuration.WithLabelValues(o.pool, status.String()).Observe(elapsed.Seconds())
}

//Personal.AI order the ending
