package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's prometheus collectors. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	registry *prometheus.Registry

	reportDuration *prometheus.HistogramVec
	reportFailures *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crm_report_build_duration_seconds",
				Help:    "Time spent fetching and aggregating a report.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"periodo"},
		),
		reportFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_report_failures_total",
				Help: "Reports that could not be built.",
			},
			[]string{"periodo"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_http_requests_total",
				Help: "HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
	}

	m.registry.MustRegister(
		m.reportDuration,
		m.reportFailures,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveReport records one report build.
func (m *Metrics) ObserveReport(periodo string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.reportDuration.WithLabelValues(periodo).Observe(elapsed.Seconds())
	if err != nil {
		m.reportFailures.WithLabelValues(periodo).Inc()
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry, mainly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}
