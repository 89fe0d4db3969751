package application

import (
	"context"

	"github.com/PaulPerea/paymentorder/internal/payment/domain"
)

// Message is one inbound queue message. Receipt is the transport ack token
// that must accompany the delete; Headers carry transport metadata such as
// the propagated trace context.
type Message struct {
	ID      string
	Receipt string
	Body    []byte
	Headers map[string]string
}

// OrderQueue is the message intake port. Receive returns a finite batch
// (possibly empty) per call; messages that are neither deleted nor
// dead-lettered become visible again per the transport's redelivery rules.
type OrderQueue interface {
	Receive(ctx context.Context) ([]Message, error)
	Delete(ctx context.Context, msg Message) error
	// DeadLetter moves an unprocessable message to the dead-letter
	// destination and acknowledges the original.
	DeadLetter(ctx context.Context, msg Message, reason string) error
}

// TransactionRepository is the durable persistence port. Save returns the
// stored record, which is authoritative for downstream consumers.
type TransactionRepository interface {
	Save(ctx context.Context, tx domain.Transaction) (domain.Transaction, error)
	Count(ctx context.Context) (int64, error)
}

// AuditRepository is the best-effort audit persistence port. A no-op
// implementation is a first-class variant.
type AuditRepository interface {
	Save(ctx context.Context, audit domain.AuditLog) error
}
