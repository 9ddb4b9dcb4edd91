package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Prometheus metrics for the reconciler

var (
	// Page fetch metrics
	PageFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfl_reconciler_page_fetches_total",
			Help: "Total number of pro-football-reference page fetches",
		},
		[]string{"kind", "status"},
	)

	PageFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nfl_reconciler_page_fetch_duration_seconds",
			Help:    "Duration of page fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nfl_reconciler_cache_hits_total",
			Help: "Total number of page cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nfl_reconciler_cache_misses_total",
			Help: "Total number of page cache misses",
		},
	)

	// Pipeline metrics
	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfl_reconciler_records_total",
			Help: "Records handled per pipeline stage and outcome",
		},
		[]string{"stage", "outcome"},
	)

	DateCorrectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfl_reconciler_date_corrections_total",
			Help: "Stored game dates rewritten to the scraped date",
		},
		[]string{"team"},
	)

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfl_reconciler_runs_total",
			Help: "Total number of reconcile runs",
		},
		[]string{"status"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nfl_reconciler_run_duration_seconds",
			Help:    "Duration of reconcile runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	LastSuccessfulRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nfl_reconciler_last_successful_run_timestamp",
			Help: "Timestamp of last successful reconcile run",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfl_reconciler_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)

// RecordPageFetch records a page fetch
func RecordPageFetch(kind, status string, duration float64) {
	PageFetchesTotal.WithLabelValues(kind, status).Inc()
	PageFetchDuration.WithLabelValues(kind).Observe(duration)
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordStage records the outcome counts of a pipeline stage
func RecordStage(stage string, examined, updated, corrected, skipped, unresolved, errors int) {
	RecordsTotal.WithLabelValues(stage, "examined").Add(float64(examined))
	RecordsTotal.WithLabelValues(stage, "updated").Add(float64(updated))
	RecordsTotal.WithLabelValues(stage, "corrected").Add(float64(corrected))
	RecordsTotal.WithLabelValues(stage, "skipped").Add(float64(skipped))
	RecordsTotal.WithLabelValues(stage, "unresolved").Add(float64(unresolved))
	if errors > 0 {
		ErrorsTotal.WithLabelValues(stage, "record").Add(float64(errors))
	}
}

// RecordDateCorrection records a stored date rewritten for a team
func RecordDateCorrection(team string) {
	DateCorrectionsTotal.WithLabelValues(team).Inc()
}

// RecordRun records a reconcile run
func RecordRun(status string, duration float64) {
	RunsTotal.WithLabelValues(status).Inc()
	RunDuration.Observe(duration)

	if status == "success" {
		LastSuccessfulRun.SetToCurrentTime()
	}
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// Push sends the default registry to a Pushgateway. A batch job exits
// before it could be scraped.
func Push(url, job string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(prometheus.DefaultGatherer).Push(); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
