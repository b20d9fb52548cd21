package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	PipelineEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_events_total",
			Help: "Total number of inbound file events by outcome (count)",
		},
		[]string{"status"},
	)

	PipelineProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_processing_duration_ms",
			Help:    "End-to-end processing duration per event in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"status"},
	)

	DuplicateChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duplicate_checks_total",
			Help: "Total number of duplicate checks by deciding signal (count)",
		},
		[]string{"signal"},
	)

	PersistWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persist_writes_total",
			Help: "Total number of persistence writes by store and status (count)",
		},
		[]string{"store", "status"},
	)

	ReportRowsProcessed = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "report_rows_processed",
			Help:    "Distribution of data row counts per processed file (count)",
			Buckets: []float64{10, 100, 1000, 10000, 100000, 1000000},
		},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)
)

// Duplicate-check signals.
const (
	SignalArtifact = "artifact"
	SignalMetadata = "metadata"
	SignalMiss     = "miss"
)

var (
	pipelineOnce       sync.Once
	circuitBreakerOnce sync.Once
	rateLimitOnce      sync.Once
)

func RegisterPipelineMetrics() {
	pipelineOnce.Do(func() {
		prometheus.MustRegister(PipelineEventsTotal)
		prometheus.MustRegister(PipelineProcessingDuration)
		prometheus.MustRegister(DuplicateChecksTotal)
		prometheus.MustRegister(PersistWritesTotal)
		prometheus.MustRegister(ReportRowsProcessed)
	})
}

func RegisterCircuitBreakerMetrics() {
	circuitBreakerOnce.Do(func() {
		prometheus.MustRegister(CircuitBreakerState)
		prometheus.MustRegister(CircuitBreakerRequests)
		prometheus.MustRegister(CircuitBreakerFailures)
	})
}

func RegisterRateLimitMetrics() {
	rateLimitOnce.Do(func() {
		prometheus.MustRegister(RateLimitRequestsTotal)
	})
}

func ObservePipelineDuration(d time.Duration, status string) {
	PipelineProcessingDuration.WithLabelValues(status).Observe(float64(d.Milliseconds()))
}
