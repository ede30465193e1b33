// Package metrics defines the application's Prometheus collectors. They are
// registered on an injected registry rather than the global default.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "authweb"

// Metrics holds the application counters.
type Metrics struct {
	// accountEvents counts account lifecycle events by topic.
	accountEvents *prometheus.CounterVec
}

// NewRegistry returns a registry preloaded with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// New creates the application collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		accountEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "account_events_total",
			Help:      "Total number of account lifecycle events by event topic",
		}, []string{"event"}),
	}
}

// RecordAccountEvent increments the counter for topic.
func (m *Metrics) RecordAccountEvent(topic string) {
	m.accountEvents.WithLabelValues(topic).Inc()
}
