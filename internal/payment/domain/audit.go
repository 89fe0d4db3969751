package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	AuditEventPaymentProcessed = "PAYMENT_PROCESSED"

	AuditStatusSuccess = "SUCCESS"
	AuditStatusFailure = "FAILURE"
)

// AuditLog is a write-once snapshot of a processing outcome. It is built only
// after the transaction has been durably saved; losing an audit record never
// invalidates the transaction it describes.
type AuditLog struct {
	AuditID        string
	Timestamp      time.Time
	EventType      string
	Status         string
	Order          Order
	Transaction    Transaction
	ProcessingTime time.Duration
}

func NewSuccessAudit(order Order, tx Transaction, startTime time.Time) AuditLog {
	now := time.Now().UTC()
	return AuditLog{
		AuditID:        uuid.NewString(),
		Timestamp:      now,
		EventType:      AuditEventPaymentProcessed,
		Status:         AuditStatusSuccess,
		Order:          order,
		Transaction:    tx,
		ProcessingTime: now.Sub(startTime),
	}
}
