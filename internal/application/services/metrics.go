package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AnalyticsMetrics holds Prometheus metrics for aggregation, details and snapshots.
// A nil *AnalyticsMetrics is valid and records nothing.
type AnalyticsMetrics struct {
	PagesFetched        prometheus.Counter
	AggregationStops    *prometheus.CounterVec
	AggregationFailures *prometheus.CounterVec
	AggregationLatency  prometheus.Histogram
	DetailsServed       *prometheus.CounterVec
	SnapshotsTotal      *prometheus.CounterVec
}

// NewAnalyticsMetrics registers analytics metrics on reg
func NewAnalyticsMetrics(reg prometheus.Registerer) *AnalyticsMetrics {
	factory := promauto.With(reg)

	return &AnalyticsMetrics{
		PagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "aggregator_pages_fetched_total",
			Help: "Total number of positions pages fetched from upstream",
		}),
		AggregationStops: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aggregator_stops_total",
			Help: "Completed aggregations by stop reason",
		}, []string{"reason"}),
		AggregationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aggregator_failures_total",
			Help: "Failed aggregations by error kind",
		}, []string{"kind"}),
		AggregationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "aggregator_duration_seconds",
			Help:    "Time taken to aggregate a wallet's positions",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		DetailsServed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "position_details_served_total",
			Help: "Position details served by source",
		}, []string{"source"}),
		SnapshotsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_snapshots_total",
			Help: "Portfolio snapshot attempts by status",
		}, []string{"status"}),
	}
}

func (m *AnalyticsMetrics) pageFetched() {
	if m != nil {
		m.PagesFetched.Inc()
	}
}

func (m *AnalyticsMetrics) aggregationDone(reason string, seconds float64) {
	if m != nil {
		m.AggregationStops.WithLabelValues(reason).Inc()
		m.AggregationLatency.Observe(seconds)
	}
}

func (m *AnalyticsMetrics) aggregationFailed(kind string) {
	if m != nil {
		m.AggregationFailures.WithLabelValues(kind).Inc()
	}
}

func (m *AnalyticsMetrics) detailServed(source string) {
	if m != nil {
		m.DetailsServed.WithLabelValues(source).Inc()
	}
}

func (m *AnalyticsMetrics) snapshot(status string) {
	if m != nil {
		m.SnapshotsTotal.WithLabelValues(status).Inc()
	}
}
