package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the process-wide Prometheus collectors. Each instance owns its
// registry so tests can construct them freely without duplicate registration.
type Metrics struct {
	registry *prometheus.Registry

	RequestTotal    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestInFlight prometheus.Gauge

	VisionRequests *prometheus.CounterVec
	PhotosAnalyzed prometheus.Counter
	ItemsDetected  prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		RequestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "movinv",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "movinv",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		RequestInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "movinv",
				Subsystem: "http",
				Name:      "in_flight_requests",
				Help:      "Number of in-flight HTTP requests.",
			},
		),
		VisionRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "movinv",
				Subsystem: "vision",
				Name:      "requests_total",
				Help:      "Vision backend calls by operation and outcome.",
			},
			[]string{"op", "outcome"},
		),
		PhotosAnalyzed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "movinv",
				Subsystem: "pipeline",
				Name:      "photos_analyzed_total",
				Help:      "Photos run through the extraction loop.",
			},
		),
		ItemsDetected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "movinv",
				Subsystem: "pipeline",
				Name:      "items_detected_total",
				Help:      "Inventory items accepted from the vision backend.",
			},
		),
	}

	registry.MustRegister(
		m.RequestTotal, m.RequestDuration, m.RequestInFlight,
		m.VisionRequests, m.PhotosAnalyzed, m.ItemsDetected,
	)
	return m
}

// Handler serves this instance's registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
