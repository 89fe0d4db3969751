package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Set carries the pipeline counters exposed on /metrics.
type Set struct {
	PaymentsProcessed  prometheus.Counter
	PaymentsFailed     prometheus.Counter
	PoisonMessages     prometheus.Counter
	AckFailures        prometheus.Counter
	ProcessingDuration prometheus.Histogram
}

func New(reg prometheus.Registerer) *Set {
	factory := promauto.With(reg)
	return &Set{
		PaymentsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "payment_messages_processed_total",
			Help: "Messages that produced a durable transaction and were acked.",
		}),
		PaymentsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "payment_messages_failed_total",
			Help: "Messages whose processing failed and were left for redelivery.",
		}),
		PoisonMessages: factory.NewCounter(prometheus.CounterOpts{
			Name: "payment_messages_poison_total",
			Help: "Messages that could not be decoded and were dead-lettered.",
		}),
		AckFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "payment_message_ack_failures_total",
			Help: "Queue deletes that failed after successful processing.",
		}),
		ProcessingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "payment_processing_duration_seconds",
			Help:    "End-to-end duration of one message unit.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
