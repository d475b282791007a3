// Package metrics exposes the coordinator's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the coordinator counters. Each instance owns its registry so
// tests can build coordinators side by side.
type Metrics struct {
	registry *prometheus.Registry

	OrdersSubmitted      prometheus.Counter
	SecretsShared        prometheus.Counter
	TxHashEvents         prometheus.Counter
	VerificationFailures prometheus.Counter
	FramesDelivered      prometheus.Counter
	FramesDropped        prometheus.Counter
	Subscribers          prometheus.Gauge
	QuotesServed         prometheus.Counter
}

// New registers and returns the coordinator metric set.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coordinator",
			Name:      name,
			Help:      help,
		})
		registry.MustRegister(c)
		return c
	}
	m := &Metrics{
		registry:             registry,
		OrdersSubmitted:      factory("orders_submitted_total", "Orders accepted by the submit endpoint."),
		SecretsShared:        factory("secrets_shared_total", "Secrets broadcast to resolvers."),
		TxHashEvents:         factory("txhash_events_total", "TXHASH frames received from resolvers."),
		VerificationFailures: factory("verification_failures_total", "Escrow verifications that failed and were dropped."),
		FramesDelivered:      factory("frames_delivered_total", "Wire frames enqueued to subscriber outboxes."),
		FramesDropped:        factory("frames_dropped_total", "Wire frames dropped on full outboxes."),
		QuotesServed:         factory("quotes_served_total", "Quotes returned by the quote endpoint."),
	}
	m.Subscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "coordinator",
		Name:      "ws_subscribers",
		Help:      "Currently connected WebSocket subscribers.",
	})
	registry.MustRegister(m.Subscribers)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
