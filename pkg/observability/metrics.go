package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flowstudio"

// Metrics holds the editor collectors and the registry they belong to.
type Metrics struct {
	registry *prometheus.Registry

	validations      *prometheus.CounterVec
	validationErrors *prometheus.CounterVec
	clones           *prometheus.CounterVec
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	storeOps         *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them, together with the Go
// runtime collectors, in a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validations_total",
				Help:      "Total number of validated flows and nodes",
			},
			[]string{"scope", "result"},
		),
		validationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_errors_total",
				Help:      "Total number of validation errors by node type",
			},
			[]string{"type"},
		),
		clones: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "clones_total",
				Help:      "Total number of cloned nodes",
			},
			[]string{"kind"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		storeOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of config store operations",
			},
			[]string{"op", "result"},
		),
	}
	m.registry.MustRegister(
		m.validations, m.validationErrors, m.clones,
		m.requests, m.requestDuration, m.storeOps,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors belong to.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveValidation records a validation of the given scope ("flow" or
// "node") and its error count per node type.
func (m *Metrics) ObserveValidation(scope string, errorsByType map[string]int) {
	result := "ok"
	for typ, n := range errorsByType {
		if n == 0 {
			continue
		}
		result = "failed"
		m.validationErrors.WithLabelValues(typ).Add(float64(n))
	}
	m.validations.WithLabelValues(scope, result).Inc()
}

// ObserveClone records n cloned nodes of the given kind.
func (m *Metrics) ObserveClone(kind string, n int) {
	m.clones.WithLabelValues(kind).Add(float64(n))
}

// ObserveRequest records a served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, code int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) observeStore(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storeOps.WithLabelValues(op, result).Inc()
}
