package metrics

import "github.com/prometheus/client_golang/prometheus"

// EventMetrics tracks the real-time event bus.
type EventMetrics struct {
	published   *prometheus.CounterVec
	dropped     *prometheus.CounterVec
	relayErrors prometheus.Counter
	subscribers prometheus.Gauge
}

// NewEventMetrics registers the bus metrics on reg. A nil reg yields a no-op recorder.
func NewEventMetrics(reg prometheus.Registerer) *EventMetrics {
	if reg == nil {
		return &EventMetrics{}
	}
	m := &EventMetrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Domain events broadcast to local subscribers.",
		}, []string{"event"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "dropped_total",
			Help:      "Deliveries skipped because a subscriber buffer was full.",
		}, []string{"event"}),
		relayErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "relay_errors_total",
			Help:      "Failures publishing to or decoding from the redis relay.",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "subscribers",
			Help:      "Currently connected real-time subscribers.",
		}),
	}
	reg.MustRegister(m.published, m.dropped, m.relayErrors, m.subscribers)
	return m
}

func (m *EventMetrics) IncPublished(event string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(event)).Inc()
}

func (m *EventMetrics) IncDropped(event string) {
	if m == nil || m.dropped == nil {
		return
	}
	m.dropped.WithLabelValues(normalizeLabel(event)).Inc()
}

func (m *EventMetrics) IncRelayError() {
	if m == nil || m.relayErrors == nil {
		return
	}
	m.relayErrors.Inc()
}

func (m *EventMetrics) SetSubscribers(n int) {
	if m == nil || m.subscribers == nil {
		return
	}
	m.subscribers.Set(float64(n))
}
