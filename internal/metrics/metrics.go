package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "invoiceguard"

// Metrics holds the application's Prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	validations      *prometheus.CounterVec
	validationScores prometheus.Histogram
	extractions      *prometheus.CounterVec
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		}, []string{"method", "path"}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "invoices_total",
			Help:      "Invoices validated, by outcome.",
		}, []string{"outcome"}),
		validationScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "score",
			Help:      "Distribution of validation scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "attempts_total",
			Help:      "Extraction attempts, by result.",
		}, []string{"result"}),
	}

	m.Registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.validations,
		m.validationScores,
		m.extractions,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// RequestStarted increments the in-flight gauge and returns a func that
// records the finished request.
func (m *Metrics) RequestStarted() func(method, path string, status int) {
	start := time.Now()
	m.httpInFlight.Inc()
	return func(method, path string, status int) {
		m.httpInFlight.Dec()
		if path == "" {
			path = "unmatched"
		}
		method = strings.ToUpper(method)
		m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordValidation records one validation verdict.
func (m *Metrics) RecordValidation(isValid bool, score int) {
	outcome := "invalid"
	if isValid {
		outcome = "valid"
	}
	m.validations.WithLabelValues(outcome).Inc()
	m.validationScores.Observe(float64(score))
}

// RecordValidationFailure records a validation that could not complete.
func (m *Metrics) RecordValidationFailure() {
	m.validations.WithLabelValues("error").Inc()
}

// RecordExtraction records an extraction attempt. result is one of
// "success", "rate_limited" or "error".
func (m *Metrics) RecordExtraction(result string) {
	m.extractions.WithLabelValues(result).Inc()
}
