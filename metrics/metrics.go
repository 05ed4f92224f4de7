package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// StageTotal counts pipeline stage executions by stage and result.
	StageTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "thumbnail",
		Subsystem: "pipeline",
		Name:      "stage_total",
		Help:      "Total number of pipeline stage executions, labeled by stage and result.",
	}, []string{"stage", "result"})

	// StageDurationSeconds is the wall time of one stage execution.
	StageDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "thumbnail",
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Wall time of one pipeline stage execution (network call included).",
		// Keep buckets fairly coarse to avoid high-cardinality time series.
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 60, 120},
	}, []string{"stage"})

	// ParseFallbackTotal counts upstream responses that exhausted the JSON
	// recovery chain and fell back to defaults.
	ParseFallbackTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "thumbnail",
		Subsystem: "pipeline",
		Name:      "parse_fallback_total",
		Help:      "Total number of upstream responses that could not be parsed as JSON, labeled by stage.",
	}, []string{"stage"})

	// UploadsDedupedTotal counts uploads skipped by (name, byteLength) dedup.
	UploadsDedupedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "thumbnail",
		Subsystem: "pipeline",
		Name:      "uploads_deduped_total",
		Help:      "Total number of uploads skipped because an identical (name, size) pair was already analyzed.",
	})
)

// Register registers pipeline metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			StageTotal,
			StageDurationSeconds,
			ParseFallbackTotal,
			UploadsDedupedTotal,
		)
	})
}
