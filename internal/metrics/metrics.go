// Package metrics exposes Prometheus instrumentation for the API.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/storefront/internal/domain/order"
)

const namespace = "storefront"

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry    *prometheus.Registry
	Requests    *prometheus.CounterVec
	LatencyMS   *prometheus.HistogramVec
	OrderEvents *prometheus.CounterVec
}

func New() *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "method", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "events_total",
		Help:      "Order events emitted, by type and publish outcome.",
	}, []string{"type", "outcome"})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		requests,
		latency,
		events,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Metrics{registry: registry, Requests: requests, LatencyMS: latency, OrderEvents: events}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// StatusRecorder remembers the status code written through it. Handlers that
// never call WriteHeader report 200.
type StatusRecorder struct {
	http.ResponseWriter
	status int
}

func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *StatusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *StatusRecorder) Status() int {
	return r.status
}

// Instrument records request count and latency under the route label.
func (m *Metrics) Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := NewStatusRecorder(w)
		next.ServeHTTP(rec, r)
		m.Requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.Status())).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Microseconds()) / 1000)
	})
}

// CountingPublisher counts order events on their way to the wrapped publisher.
type CountingPublisher struct {
	next    order.Publisher
	metrics *Metrics
}

func (m *Metrics) Publisher(next order.Publisher) *CountingPublisher {
	return &CountingPublisher{next: next, metrics: m}
}

func (p *CountingPublisher) Publish(ctx context.Context, key string, event any) error {
	eventType := "unknown"
	if e, ok := event.(order.Event); ok {
		eventType = e.Type
	}
	err := p.next.Publish(ctx, key, event)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.metrics.OrderEvents.WithLabelValues(eventType, outcome).Inc()
	return err
}
