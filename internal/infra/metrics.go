package infra

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes
const (
	FetchSuccess = "success"
	FetchFailure = "failure"
	FetchTimeout = "timeout"
)

// Message kinds
const (
	MessageChat     = "chat"
	MessageExchange = "exchange"
)

// Metrics groups the Prometheus collectors of the rate fetcher and the chat server.
// All methods are safe on a nil receiver so components can run without metrics.
type Metrics struct {
	registry *prometheus.Registry

	FetchTotal        *prometheus.CounterVec
	FetchDuration     prometheus.Histogram
	InvalidParams     *prometheus.CounterVec
	MessagesTotal     *prometheus.CounterVec
	Deliveries        *prometheus.CounterVec
	ActiveConnections prometheus.Gauge
	ChatLogErrors     prometheus.Counter
}

// NewMetrics registers all collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		FetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_fetch_total",
				Help: "Per-date rate fetches by outcome",
			},
			[]string{"outcome"},
		),
		FetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rate_fetch_duration_seconds",
				Help:    "Latency of one per-date rate fetch",
				Buckets: prometheus.DefBuckets,
			},
		),
		InvalidParams: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exchange_invalid_params_total",
				Help: "Exchange parameters replaced by defaults",
			},
			[]string{"param"},
		),
		MessagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_messages_total",
				Help: "Inbound chat messages by kind",
			},
			[]string{"kind"},
		),
		Deliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_deliveries_total",
				Help: "Broadcast deliveries to peers by result",
			},
			[]string{"result"},
		),
		ActiveConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "chat_active_connections",
				Help: "Currently registered peers",
			},
		),
		ChatLogErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "chat_log_errors_total",
				Help: "Failed chat log appends",
			},
		),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordFetch records one per-date fetch.
func (m *Metrics) RecordFetch(outcome string, latency time.Duration) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(outcome).Inc()
	m.FetchDuration.Observe(latency.Seconds())
}

// RecordInvalidParam records a parameter that fell back to its default.
func (m *Metrics) RecordInvalidParam(name string) {
	if m == nil {
		return
	}
	m.InvalidParams.WithLabelValues(name).Inc()
}

// RecordMessage records an inbound message.
func (m *Metrics) RecordMessage(kind string) {
	if m == nil {
		return
	}
	m.MessagesTotal.WithLabelValues(kind).Inc()
}

// RecordDeliveries records the outcome of one broadcast.
func (m *Metrics) RecordDeliveries(delivered, failed int) {
	if m == nil {
		return
	}
	m.Deliveries.WithLabelValues("delivered").Add(float64(delivered))
	m.Deliveries.WithLabelValues("failed").Add(float64(failed))
}

// IncrementConnections increments active connections by 1.
func (m *Metrics) IncrementConnections() {
	if m == nil {
		return
	}
	m.ActiveConnections.Inc()
}

// DecrementConnections decrements active connections by 1.
func (m *Metrics) DecrementConnections() {
	if m == nil {
		return
	}
	m.ActiveConnections.Dec()
}

// RecordChatLogError records a failed audit append.
func (m *Metrics) RecordChatLogError() {
	if m == nil {
		return
	}
	m.ChatLogErrors.Inc()
}
