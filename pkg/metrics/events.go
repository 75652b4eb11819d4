package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EventBusMetrics records in-process event fan-out.
type EventBusMetrics struct {
	published       *prometheus.CounterVec
	handlerFailures *prometheus.CounterVec
	handlerDuration *prometheus.HistogramVec
}

func NewEventBusMetrics(reg prometheus.Registerer) *EventBusMetrics {
	if reg == nil {
		return &EventBusMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_events_published_total",
		Help: "Events published on the in-process bus.",
	}, []string{"kind"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_event_handler_failures_total",
		Help: "Event handler invocations that returned an error or panicked.",
	}, []string{"kind", "handler"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventory_event_handler_duration_seconds",
		Help:    "Duration of event handler invocations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	reg.MustRegister(published, failures, duration)
	return &EventBusMetrics{published: published, handlerFailures: failures, handlerDuration: duration}
}

func (m *EventBusMetrics) IncPublished(kind string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(labelOrUnknown(kind)).Inc()
}

func (m *EventBusMetrics) IncHandlerFailure(kind, handler string) {
	if m == nil || m.handlerFailures == nil {
		return
	}
	m.handlerFailures.WithLabelValues(labelOrUnknown(kind), labelOrUnknown(handler)).Inc()
}

func (m *EventBusMetrics) ObserveHandler(kind string, d time.Duration) {
	if m == nil || m.handlerDuration == nil {
		return
	}
	m.handlerDuration.WithLabelValues(labelOrUnknown(kind)).Observe(d.Seconds())
}
