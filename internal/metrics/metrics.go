// Package metrics defines the Prometheus metrics exposed by long-running
// courtside commands (watch, live).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the courtside client.
// Pass to components that need to record metrics. A nil *Metrics is valid
// and records nothing, so short-lived commands skip registration entirely.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	TokenRefreshes     *prometheus.CounterVec
	CacheInvalidations *prometheus.CounterVec
	EventsReceived     *prometheus.CounterVec
	Reconnects         prometheus.Counter
	RealtimeConnected  prometheus.Gauge
}

// New creates and registers all metrics with the given registry.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "courtside",
				Name:      "api_requests_total",
				Help:      "Total API requests by method and outcome",
			},
			[]string{"method", "status"},
		),
		TokenRefreshes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "courtside",
				Name:      "token_refreshes_total",
				Help:      "Total token refresh attempts by result",
			},
			[]string{"result"}, // result=ok/failed
		),
		CacheInvalidations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "courtside",
				Name:      "cache_invalidations_total",
				Help:      "Cache invalidations by originating source",
			},
			[]string{"source"}, // source=event/mutation
		),
		EventsReceived: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "courtside",
				Name:      "realtime_events_total",
				Help:      "Real-time events received by name",
			},
			[]string{"event"},
		),
		Reconnects: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "courtside",
				Name:      "realtime_reconnects_total",
				Help:      "Real-time channel reconnect attempts",
			},
		),
		RealtimeConnected: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "courtside",
				Name:      "realtime_connected",
				Help:      "1 while the real-time channel is connected",
			},
		),
	}
}

// IncRequest records one API request outcome. Nil-safe.
func (m *Metrics) IncRequest(method, status string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, status).Inc()
}

// IncRefresh records one token refresh attempt. Nil-safe.
func (m *Metrics) IncRefresh(result string) {
	if m == nil {
		return
	}
	m.TokenRefreshes.WithLabelValues(result).Inc()
}

// IncInvalidation records one cache invalidation. Nil-safe.
func (m *Metrics) IncInvalidation(source string) {
	if m == nil {
		return
	}
	m.CacheInvalidations.WithLabelValues(source).Inc()
}

// IncEvent records one received real-time event. Nil-safe.
func (m *Metrics) IncEvent(event string) {
	if m == nil {
		return
	}
	m.EventsReceived.WithLabelValues(event).Inc()
}

// IncReconnect records one reconnect attempt. Nil-safe.
func (m *Metrics) IncReconnect() {
	if m == nil {
		return
	}
	m.Reconnects.Inc()
}

// SetConnected flips the connection gauge. Nil-safe.
func (m *Metrics) SetConnected(up bool) {
	if m == nil {
		return
	}
	if up {
		m.RealtimeConnected.Set(1)
	} else {
		m.RealtimeConnected.Set(0)
	}
}
