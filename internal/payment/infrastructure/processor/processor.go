package processor

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"github.com/PaulPerea/paymentorder/internal/payment/application"
	"github.com/PaulPerea/paymentorder/pkg/metrics"
	"github.com/PaulPerea/paymentorder/pkg/tracing"
)

// Processor drives the pipeline: a fixed-interval ticker polls the queue and
// each message is handled as an independent unit on a bounded worker pool.
// A tick does not wait for its batch to finish, so ticks may overlap when
// processing outlives the polling interval.
type Processor struct {
	log      *slog.Logger
	queue    application.OrderQueue
	svc      *application.Service
	interval time.Duration
	workers  *semaphore.Weighted
	met      *metrics.Set
	tracer   trace.Tracer
}

func New(log *slog.Logger, queue application.OrderQueue, svc *application.Service, interval time.Duration, workerCount int64, met *metrics.Set) *Processor {
	return &Processor{
		log:      log,
		queue:    queue,
		svc:      svc,
		interval: interval,
		workers:  semaphore.NewWeighted(workerCount),
		met:      met,
		tracer:   otel.Tracer("payment-processor"),
	}
}

// Run polls until ctx is cancelled. In-flight units are not awaited on
// shutdown; unacked messages reappear through queue redelivery.
func (p *Processor) Run(ctx context.Context) error {
	p.log.Info("processor started", "interval", p.interval)

	t := time.NewTicker(p.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("processor stopping")
			return nil
		case <-t.C:
			p.poll(ctx)
		}
	}
}

// poll drains one batch. A receive failure yields an empty batch for this
// tick; one bad message can never halt the loop.
func (p *Processor) poll(ctx context.Context) {
	msgs, err := p.queue.Receive(ctx)
	if err != nil {
		p.log.Error("queue receive failed", "err", err)
		return
	}

	for _, msg := range msgs {
		if err := p.workers.Acquire(ctx, 1); err != nil {
			return
		}
		go func(msg application.Message) {
			defer p.workers.Release(1)
			p.handle(ctx, msg)
		}(msg)
	}
}

func (p *Processor) handle(ctx context.Context, msg application.Message) {
	start := time.Now()
	ctx = tracing.ExtractHeaders(ctx, msg.Headers)
	ctx, span := p.tracer.Start(ctx, "ProcessQueueMessage")
	defer span.End()

	order, err := DecodeOrder(msg.Body)
	if err != nil {
		if application.IsInvalidOrder(err) {
			// Validation failure, not transport garbage: the message
			// stays queued for redelivery and operator handling.
			p.log.Error("order validation failed", "message_id", msg.ID, "err", err)
			p.met.PaymentsFailed.Inc()
			return
		}
		p.log.Error("poison message", "message_id", msg.ID, "err", err)
		p.met.PoisonMessages.Inc()
		if dlErr := p.queue.DeadLetter(ctx, msg, err.Error()); dlErr != nil {
			p.log.Error("dead-letter failed", "message_id", msg.ID, "err", dlErr)
		}
		return
	}

	tx, err := p.svc.ProcessPayment(ctx, order)
	if err != nil {
		// Message stays in the queue; the transport redelivers it.
		p.log.Error("payment processing failed", "message_id", msg.ID, "order_id", order.ID(), "err", err)
		p.met.PaymentsFailed.Inc()
		return
	}

	if err := p.queue.Delete(ctx, msg); err != nil {
		// Swallowed: redelivery of an already-saved order hits the
		// upsert in the transaction store rather than duplicating it.
		p.log.Warn("message delete failed", "message_id", msg.ID, "err", err)
		p.met.AckFailures.Inc()
	}

	p.met.PaymentsProcessed.Inc()
	p.met.ProcessingDuration.Observe(time.Since(start).Seconds())
	p.log.Info("message processed", "message_id", msg.ID, "transaction_id", tx.ID)
}
