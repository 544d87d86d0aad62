package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dashboard"

// Metrics holds the Prometheus collectors for feed fetching and the dashboard
// snapshot. A nil *Metrics is valid and records nothing.
type Metrics struct {
	FeedRequests     *prometheus.CounterVec // labels: outcome={success,error}
	FeedCache        *prometheus.CounterVec // labels: result={hit,miss,error}
	FeedFetchSeconds prometheus.Histogram
	IntervalsParsed  prometheus.Histogram

	RefreshTotal      *prometheus.CounterVec // labels: outcome={success,error}
	LastRefreshUnix   prometheus.Gauge
	SnapshotIntervals prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		FeedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_requests_total",
			Help:      "Forecast feed requests by outcome.",
		}, []string{"outcome"}),
		FeedCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_cache_total",
			Help:      "Forecast feed cache lookups by result.",
		}, []string{"result"}),
		FeedFetchSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_fetch_duration_seconds",
			Help:      "Duration of a fetch-parse-normalize cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		IntervalsParsed: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_intervals",
			Help:      "Number of forecast intervals per normalized feed.",
			Buckets:   []float64{0, 1, 8, 16, 24, 32, 40, 48},
		}),
		RefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_total",
			Help:      "Dashboard refreshes by outcome.",
		}, []string{"outcome"}),
		LastRefreshUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful dashboard refresh.",
		}),
		SnapshotIntervals: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_intervals",
			Help:      "Intervals in the snapshot currently served.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FeedRequests,
		m.FeedCache,
		m.FeedFetchSeconds,
		m.IntervalsParsed,
		m.RefreshTotal,
		m.LastRefreshUnix,
		m.SnapshotIntervals,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting registers the metrics on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() (*Metrics, *prometheus.Registry) {
	m := newMetrics()
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.collectors()...)
	return m, reg
}

func (m *Metrics) ObserveFeedRequest(err error, seconds float64) {
	if m == nil {
		return
	}
	m.FeedRequests.WithLabelValues(outcome(err)).Inc()
	m.FeedFetchSeconds.Observe(seconds)
}

func (m *Metrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.FeedCache.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveIntervals(n int) {
	if m == nil {
		return
	}
	m.IntervalsParsed.Observe(float64(n))
}

func (m *Metrics) ObserveRefresh(err error, unixSeconds float64, intervals int) {
	if m == nil {
		return
	}
	m.RefreshTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return
	}
	m.LastRefreshUnix.Set(unixSeconds)
	m.SnapshotIntervals.Set(float64(intervals))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
