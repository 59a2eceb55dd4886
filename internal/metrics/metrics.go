// Package metrics exposes Prometheus instrumentation for the tracker and HTTP adapter.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Mutations      *prometheus.CounterVec
	StoreDuration  *prometheus.HistogramVec
	LoadFailures   prometheus.Counter
	HistoryEntries prometheus.Gauge
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Mutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "weightlog_mutations_total",
			Help: "Total number of tracker mutations by operation and result",
		}, []string{"op", "result"}),

		StoreDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weightlog_store_duration_seconds",
			Help:    "Duration of record store calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "table"}),

		LoadFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "weightlog_load_failures_total",
			Help: "Total number of projection reloads that failed and fell back to empty",
		}),

		HistoryEntries: f.NewGauge(prometheus.GaugeOpts{
			Name: "weightlog_history_entries",
			Help: "Number of weight entries in the current projection",
		}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "weightlog_http_requests_total",
			Help: "Total number of HTTP requests by method and status",
		}, []string{"method", "status"}),

		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weightlog_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveStore records the duration of a store call started at start.
func (m *Metrics) ObserveStore(op, table string, start time.Time) {
	if m == nil {
		return
	}
	m.StoreDuration.WithLabelValues(op, table).Observe(time.Since(start).Seconds())
}

// Mutation counts a finished mutation.
func (m *Metrics) Mutation(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Mutations.WithLabelValues(op, result).Inc()
}

// LoadFailed counts a reload that fell back to an empty projection.
func (m *Metrics) LoadFailed() {
	if m == nil {
		return
	}
	m.LoadFailures.Inc()
}

// SetHistorySize records the size of the current history.
func (m *Metrics) SetHistorySize(n int) {
	if m == nil {
		return
	}
	m.HistoryEntries.Set(float64(n))
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method).Observe(d.Seconds())
}
