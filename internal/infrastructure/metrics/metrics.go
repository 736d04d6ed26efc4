// Package metrics holds the domain counters exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "analyzer"

// Metrics are the ledger and pipeline counters.
type Metrics struct {
	OrdersCreated       prometheus.Counter
	PaymentsVerified    *prometheus.CounterVec
	Refunds             *prometheus.CounterVec
	Analyses            *prometheus.CounterVec
	AnalysisDuration    prometheus.Histogram
	WebhookEvents       *prometheus.CounterVec
	ReservationsExpired prometheus.Counter
}

// New registers the counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OrdersCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Gateway orders created.",
		}),
		PaymentsVerified: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_verifications_total",
			Help:      "Payment verification attempts by outcome.",
		}, []string{"outcome"}),
		Refunds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refunds_total",
			Help:      "Refund requests by outcome.",
		}, []string{"outcome"}),
		Analyses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analysis requests by outcome.",
		}, []string{"outcome"}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_llm_duration_seconds",
			Help:      "LLM completion latency.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30},
		}),
		WebhookEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Webhook deliveries by event type and outcome.",
		}, []string{"event", "outcome"}),
		ReservationsExpired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credit_reservations_expired_total",
			Help:      "Credit reservations swept after their lease ran out.",
		}),
	}
}

// NewNop returns counters registered nowhere, for tests.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
