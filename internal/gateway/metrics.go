// ABOUTME: Prometheus instrumentation for the bridge
// ABOUTME: Counters live in a per-gateway registry so tests stay isolated

package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	registry *prometheus.Registry

	conversationsCreated prometheus.Counter
	eventsStored         prometheus.Counter
	messagesUpserted     prometheus.Counter
	agentRegistrations   prometheus.Counter
}

func newMetrics(registry *prometheus.Registry) *metrics {
	factory := promauto.With(registry)
	return &metrics{
		registry: registry,
		conversationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "bridge_conversations_created_total",
			Help: "Number of conversations created.",
		}),
		eventsStored: factory.NewCounter(prometheus.CounterOpts{
			Name: "bridge_events_stored_total",
			Help: "Number of events appended to conversation logs.",
		}),
		messagesUpserted: factory.NewCounter(prometheus.CounterOpts{
			Name: "bridge_messages_upserted_total",
			Help: "Number of message writes, including streaming upserts.",
		}),
		agentRegistrations: factory.NewCounter(prometheus.CounterOpts{
			Name: "bridge_agent_registrations_total",
			Help: "Number of successful agent registrations.",
		}),
	}
}
