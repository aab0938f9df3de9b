package infra

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the service's Prometheus metrics on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	ResultsIngested  *prometheus.CounterVec
	FightersResolved *prometheus.CounterVec
	BetsPlaced       prometheus.Counter
	BetsReconciled   *prometheus.CounterVec
	OutboxPublished  *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors, plus the Go runtime and process collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fightcard_http_requests_total",
				Help: "HTTP requests by route pattern, method and status code",
			},
			[]string{"route", "method", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fightcard_http_request_duration_seconds",
				Help:    "HTTP request latency by route pattern and method",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		ResultsIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fightcard_results_ingested_total",
				Help: "Bout results processed by ingestion, by outcome",
			},
			[]string{"outcome"},
		),
		FightersResolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fightcard_fighters_resolved_total",
				Help: "Fighter resolutions by action (upserted, ensured, fallback)",
			},
			[]string{"action"},
		),
		BetsPlaced: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fightcard_bets_placed_total",
				Help: "Bets placed or overwritten",
			},
		),
		BetsReconciled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fightcard_bets_reconciled_total",
				Help: "Bets settled by reconciliation, by result",
			},
			[]string{"result"},
		),
		OutboxPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fightcard_outbox_published_total",
				Help: "Outbox events relayed to the broker, by status",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.ResultsIngested,
		m.FightersResolved,
		m.BetsPlaced,
		m.BetsReconciled,
		m.OutboxPublished,
	)

	return m
}

// Registry returns the prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// --- Helper methods for recording metrics ---

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, status).Inc()
	m.HTTPDuration.WithLabelValues(route, method).Observe(seconds)
}

// RecordIngestion records one ingested bout result ("recorded" or "failed").
func (m *Metrics) RecordIngestion(outcome string) {
	if m == nil {
		return
	}
	m.ResultsIngested.WithLabelValues(outcome).Inc()
}

// RecordFighterResolution records how a fighter name was resolved.
func (m *Metrics) RecordFighterResolution(action string) {
	if m == nil {
		return
	}
	m.FightersResolved.WithLabelValues(action).Inc()
}

// RecordBetPlaced records a placed bet.
func (m *Metrics) RecordBetPlaced() {
	if m == nil {
		return
	}
	m.BetsPlaced.Inc()
}

// RecordBetSettled records a bet settled by reconciliation.
func (m *Metrics) RecordBetSettled(result string) {
	if m == nil {
		return
	}
	m.BetsReconciled.WithLabelValues(result).Inc()
}

// RecordOutboxPublish records the outcome of relaying one outbox event.
func (m *Metrics) RecordOutboxPublish(status string) {
	if m == nil {
		return
	}
	m.OutboxPublished.WithLabelValues(status).Inc()
}
