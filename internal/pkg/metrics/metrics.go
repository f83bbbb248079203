package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the custom Prometheus collectors of the inspection workflow.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	InboundEvents        *prometheus.CounterVec
	Transitions          *prometheus.CounterVec
	ResolutionHits       *prometheus.CounterVec
	NotificationFailures prometheus.Counter
	HandleLatency        prometheus.Histogram
	ProgressSubscribers  prometheus.Gauge
}

// NewMetrics registers the collectors on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Inbound webhook events by outcome (processed, duplicate, unidentified, invalid, failed)
		InboundEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inspection_inbound_events_total",
			Help: "Total inbound WhatsApp events by outcome",
		}, []string{"outcome"}),

		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inspection_transitions_total",
			Help: "Conversation state transitions by source and target step",
		}, []string{"from", "to"}),

		// Which tier answered a resolution (identity or checklist)
		ResolutionHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inspection_resolution_hits_total",
			Help: "Resolution outcomes by resolver and winning tier",
		}, []string{"resolver", "tier"}),

		NotificationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "inspection_notification_failures_total",
			Help: "Outbound WhatsApp messages that failed to send",
		}),

		HandleLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "inspection_handle_duration_seconds",
			Help:    "Time spent handling one inbound event",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),

		ProgressSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "inspection_progress_subscribers",
			Help: "Connected live progress websocket clients",
		}),
	}
}

func (m *Metrics) ObserveInbound(outcome string) {
	if m == nil {
		return
	}
	m.InboundEvents.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) ObserveResolution(resolver, tier string) {
	if m == nil {
		return
	}
	m.ResolutionHits.WithLabelValues(resolver, tier).Inc()
}

func (m *Metrics) ObserveNotificationFailure() {
	if m == nil {
		return
	}
	m.NotificationFailures.Inc()
}

func (m *Metrics) ObserveHandleSeconds(seconds float64) {
	if m == nil {
		return
	}
	m.HandleLatency.Observe(seconds)
}

func (m *Metrics) SetProgressSubscribers(n int) {
	if m == nil {
		return
	}
	m.ProgressSubscribers.Set(float64(n))
}
