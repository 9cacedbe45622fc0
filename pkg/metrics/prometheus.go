package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes application metrics through Prometheus.
type Recorder struct {
	fetches          *prometheus.CounterVec
	cacheEvents      *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	syntheticRuns    prometheus.Counter
}

// NewRecorder registers collectors on the default registry.
func NewRecorder() *Recorder {
	return &Recorder{
		fetches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risklens_provider_fetches_total",
				Help: "Price fetch attempts by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		cacheEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risklens_cache_events_total",
				Help: "Cache hits, misses and writes by event type",
			},
			[]string{"event"},
		),
		analysisDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "risklens_analysis_duration_seconds",
				Help:    "End to end portfolio analysis duration",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		syntheticRuns: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "risklens_synthetic_fallbacks_total",
				Help: "Analyses served from synthetic data",
			},
		),
	}
}

// RecordFetch counts a provider fetch attempt. Symbols stay out of the
// labels to keep cardinality bounded.
func (r *Recorder) RecordFetch(provider string, ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	r.fetches.WithLabelValues(provider, outcome).Inc()
}

// RecordCacheEvent counts a cache event ("hit", "miss", "stale", "write").
func (r *Recorder) RecordCacheEvent(event string) {
	r.cacheEvents.WithLabelValues(event).Inc()
}

// RecordAnalysis observes one analysis duration in seconds.
func (r *Recorder) RecordAnalysis(seconds float64) {
	r.analysisDuration.Observe(seconds)
}

// RecordSyntheticFallback counts an analysis that fell back to
// generated data.
func (r *Recorder) RecordSyntheticFallback() {
	r.syntheticRuns.Inc()
}
