package observability

import (
	"time"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Chart states recorded by RecordChart.
const (
	ChartBuilt   = "built"
	ChartEmpty   = "empty"
	ChartSkipped = "skipped"
)

// ViewCache is the cache label of the page-view store.
const ViewCache = "views"

// Metrics holds all Prometheus metrics for the dashboard service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	sourceErrors    *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	datasetFailures *prometheus.CounterVec
	charts          *prometheus.CounterVec
	views           prometheus.Counter
	filters         *prometheus.CounterVec
	filterMatches   prometheus.Histogram
	requestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rupeetrack_operation_duration_seconds",
				Help:    "Duration of dashboard operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		sourceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rupeetrack_page_source_errors_total",
				Help: "Total errors while fetching pages.",
			},
			[]string{"source"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rupeetrack_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rupeetrack_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		datasetFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rupeetrack_dataset_failures_total",
				Help: "Page payloads that could not be decoded.",
			},
			[]string{"dataset"},
		),
		charts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rupeetrack_charts_total",
				Help: "Chart specifications by slot and outcome.",
			},
			[]string{"slot", "state"},
		),
		views: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rupeetrack_views_created_total",
				Help: "Page views loaded.",
			},
		),
		filters: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rupeetrack_filters_applied_total",
				Help: "Filter applications by outcome.",
			},
			[]string{"result"},
		),
		filterMatches: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rupeetrack_filter_matches",
				Help:    "Transactions surviving a filter.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rupeetrack_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrSourceError increments the page-source error counter.
func (m *Metrics) IncrSourceError(source string) {
	m.sourceErrors.WithLabelValues(source).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrDatasetFailure counts a payload that failed to decode.
func (m *Metrics) IncrDatasetFailure(dataset domain.DatasetName) {
	m.datasetFailures.WithLabelValues(string(dataset)).Inc()
}

// RecordChart counts one chart outcome.
func (m *Metrics) RecordChart(slot domain.ChartSlot, state string) {
	m.charts.WithLabelValues(string(slot), state).Inc()
}

// IncrViewCreated counts a loaded page view.
func (m *Metrics) IncrViewCreated() {
	m.views.Inc()
}

// RecordFilter counts a filter application and how many records it kept.
func (m *Metrics) RecordFilter(matched int) {
	result := "matched"
	if matched == 0 {
		result = "empty"
	}
	m.filters.WithLabelValues(result).Inc()
	m.filterMatches.Observe(float64(matched))
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// Snapshot returns the dashboard counters for the GET /v1/metrics/dashboard
// endpoint. Counters are cumulative since process start.
func (m *Metrics) Snapshot() *domain.EngineMetrics {
	var built, empty, skipped float64
	for _, slot := range domain.ChartSlots {
		built += getCounterValue(m.charts, string(slot), ChartBuilt)
		empty += getCounterValue(m.charts, string(slot), ChartEmpty)
		skipped += getCounterValue(m.charts, string(slot), ChartSkipped)
	}

	var failures float64
	for _, name := range append([]domain.DatasetName{domain.DatasetTransactions}, domain.AggregateDatasets...) {
		failures += getCounterValue(m.datasetFailures, string(name))
	}

	hits := getCounterValue(m.cacheHits, ViewCache)
	misses := getCounterValue(m.cacheMisses, ViewCache)
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.EngineMetrics{
		ViewsCreated:      int64(readCounter(m.views)),
		FiltersApplied:    int64(getCounterValue(m.filters, "matched") + getCounterValue(m.filters, "empty")),
		ChartsBuilt:       int64(built + empty),
		EmptyCharts:       int64(empty),
		SkippedCharts:     int64(skipped),
		DatasetFailures:   int64(failures),
		ViewCacheHitRate:  hitRate,
		SourceErrorsTotal: int64(getCounterValue(m.sourceErrors, "http") + getCounterValue(m.sourceErrors, "file")),
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	return readCounter(cv.WithLabelValues(labels...))
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
