package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Histogram bucket definitions.
var (
	dispatchDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	upstreamDurationBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
)

// Metrics holds all Prometheus metric instruments for the gateway.
type Metrics struct {
	// Dispatch metrics
	DispatchesTotal         *prometheus.CounterVec
	DispatchDuration        *prometheus.HistogramVec
	ValidationFailuresTotal *prometheus.CounterVec

	// Upstream metrics
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration prometheus.Histogram
	BreakerState            prometheus.Gauge
}

// InitMetrics creates and registers all Prometheus metric instruments.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DispatchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leakwatch_dispatches_total",
			Help: "Total number of dispatched operations.",
		}, []string{"operation", "outcome"}),
		DispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leakwatch_dispatch_duration_seconds",
			Help:    "Dispatch duration in seconds, including the upstream call.",
			Buckets: dispatchDurationBuckets,
		}, []string{"operation"}),
		ValidationFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leakwatch_validation_failures_total",
			Help: "Total number of argument validation failures.",
		}, []string{"operation"}),
		UpstreamRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leakwatch_upstream_requests_total",
			Help: "Total number of upstream API requests.",
		}, []string{"status"}),
		UpstreamRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "leakwatch_upstream_request_duration_seconds",
			Help:    "Upstream request duration in seconds.",
			Buckets: upstreamDurationBuckets,
		}),
		BreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "leakwatch_upstream_breaker_state",
			Help: "Upstream circuit breaker state (0=closed, 1=open, 2=half-open).",
		}),
	}

	reg.MustRegister(
		m.DispatchesTotal,
		m.DispatchDuration,
		m.ValidationFailuresTotal,
		m.UpstreamRequestsTotal,
		m.UpstreamRequestDuration,
		m.BreakerState,
	)

	return m
}

// Handler returns the Prometheus scrape handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
