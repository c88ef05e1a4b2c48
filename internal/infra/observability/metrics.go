package observability

import (
	"time"

	"github.com/boddenberg/offer-prep-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the pipeline.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	rows          *prometheus.CounterVec
	outcomes      *prometheus.CounterVec
	removed       prometheus.Counter
	runs          *prometheus.CounterVec
	sourceErrors  *prometheus.CounterVec
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// pipeline metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "offerprep_stage_duration_seconds",
				Help:    "Duration of pipeline stages.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		rows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "offerprep_rows_total",
				Help: "Rows read or produced, by table.",
			},
			[]string{"table"},
		),
		outcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "offerprep_offer_outcomes_total",
				Help: "Offer receipts by attributed outcome.",
			},
			[]string{"outcome"},
		),
		removed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "offerprep_removed_customers_total",
				Help: "Customers dropped for the sentinel age.",
			},
		),
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "offerprep_runs_total",
				Help: "Pipeline runs by status.",
			},
			[]string{"status"},
		),
		sourceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "offerprep_source_errors_total",
				Help: "Errors loading raw tables.",
			},
			[]string{"table"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "offerprep_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "offerprep_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// RecordStage records the duration of a pipeline stage.
func (m *Metrics) RecordStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// AddRows adds n rows to the counter for table.
func (m *Metrics) AddRows(table string, n int) {
	m.rows.WithLabelValues(table).Add(float64(n))
}

// RecordOutcomes adds the receipt, view and completion totals of one run.
func (m *Metrics) RecordOutcomes(received, viewed, completed int) {
	m.outcomes.WithLabelValues("received").Add(float64(received))
	m.outcomes.WithLabelValues("viewed").Add(float64(viewed))
	m.outcomes.WithLabelValues("completed").Add(float64(completed))
}

// AddRemovedCustomers adds n customers dropped for the sentinel age.
func (m *Metrics) AddRemovedCustomers(n int) {
	m.removed.Add(float64(n))
}

// IncrRun increments the run counter with a status label.
func (m *Metrics) IncrRun(status string) {
	m.runs.WithLabelValues(status).Inc()
}

// IncrSourceError increments the source error counter.
func (m *Metrics) IncrSourceError(table string) {
	m.sourceErrors.WithLabelValues(table).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// Snapshot returns cumulative pipeline counters for GET /v1/metrics/pipeline.
func (m *Metrics) Snapshot() *domain.PipelineStats {
	received := getCounterValue(m.outcomes, "received")
	viewed := getCounterValue(m.outcomes, "viewed")
	completed := getCounterValue(m.outcomes, "completed")
	hits := getCounterValue(m.cacheHits, "runs")
	misses := getCounterValue(m.cacheMisses, "runs")

	stats := &domain.PipelineStats{
		Runs:             int64(getCounterValue(m.runs, "success") + getCounterValue(m.runs, "error")),
		FailedRuns:       int64(getCounterValue(m.runs, "error")),
		Received:         int64(received),
		Viewed:           int64(viewed),
		Completed:        int64(completed),
		RemovedCustomers: int64(readCounter(m.removed)),
	}
	if received > 0 {
		stats.ViewRate = viewed / received
		stats.CompletionRate = completed / received
	}
	if hits+misses > 0 {
		stats.RunCacheHitRate = hits / (hits + misses)
	}
	return stats
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	return readCounter(cv.WithLabelValues(label))
}

func readCounter(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
