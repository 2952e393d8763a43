// Package metrics provides Prometheus metrics for the ideaboard.
package metrics

import (
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Storage operation results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Manager manages all Prometheus metrics for the ideaboard.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Flow metrics
	ideasSubmitted     prometheus.Counter
	validationFailures *prometheus.CounterVec
	votesRecorded      prometheus.Counter
	votesRejected      prometheus.Counter
	votePartialWrites  prometheus.Counter
	leaderboardReads   prometheus.Counter
	ideasTotal         prometheus.Gauge

	// Storage metrics
	storageOps     *prometheus.CounterVec
	storageLatency *prometheus.HistogramVec
	corruptRecords *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "ideaboard",
		histogramBuckets: []float64{
			0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1,
		},
		registry: prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.ideasSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ideas_submitted_total",
		Help:      "Total number of ideas persisted by the submission flow",
	})

	m.validationFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_failures_total",
		Help:      "Submissions rejected because a required field was empty",
	}, []string{"field"})

	m.votesRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "votes_recorded_total",
		Help:      "Votes whose idea and vote-set writes both succeeded",
	})

	m.votesRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "votes_rejected_total",
		Help:      "Votes rejected because this device already voted for the idea",
	})

	m.votePartialWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "vote_partial_writes_total",
		Help:      "Votes where the idea count was written but the vote-set write failed",
	})

	m.leaderboardReads = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_computed_total",
		Help:      "Number of times the leaderboard was derived from the idea collection",
	})

	m.ideasTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ideas",
		Help:      "Number of ideas in the collection at the last read",
	})

	m.storageOps = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "storage_operations_total",
		Help:      "Key-value store operations by backend, operation and result",
	}, []string{"backend", "op", "result"})

	m.storageLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "storage_operation_duration_seconds",
		Help:      "Latency of key-value store operations",
		Buckets:   m.histogramBuckets,
	}, []string{"backend", "op"})

	m.corruptRecords = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "storage_corrupt_records_total",
		Help:      "Stored records that failed to decode and were read as empty",
	}, []string{"key"})
}

// RecordIdeaSubmitted increments the submitted ideas counter.
func RecordIdeaSubmitted() {
	globalManager.ideasSubmitted.Inc()
}

// RecordValidationFailure counts a rejected submission field.
func RecordValidationFailure(field string) {
	globalManager.validationFailures.WithLabelValues(field).Inc()
}

// RecordVoteRecorded increments the recorded votes counter.
func RecordVoteRecorded() {
	globalManager.votesRecorded.Inc()
}

// RecordVoteRejected increments the already-voted counter.
func RecordVoteRejected() {
	globalManager.votesRejected.Inc()
}

// RecordVotePartialWrite counts a vote left half-persisted.
func RecordVotePartialWrite() {
	globalManager.votePartialWrites.Inc()
}

// RecordLeaderboardComputed increments the leaderboard counter.
func RecordLeaderboardComputed() {
	globalManager.leaderboardReads.Inc()
}

// UpdateIdeasTotal sets the ideas gauge.
func UpdateIdeasTotal(count int) {
	globalManager.ideasTotal.Set(float64(count))
}

// RecordStorageOp records a key-value store call.
func RecordStorageOp(backend, op string, err error, d time.Duration) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	globalManager.storageOps.WithLabelValues(backend, op, result).Inc()
	globalManager.storageLatency.WithLabelValues(backend, op).Observe(d.Seconds())
}

// RecordCorruptRecord counts a stored record that could not be decoded.
func RecordCorruptRecord(key string) {
	globalManager.corruptRecords.WithLabelValues(key).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes the registry in text exposition format to path, for
// pickup by the node_exporter textfile collector.
func WriteTextfile(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty path", ErrExportFailed)
	}
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return nil
}
