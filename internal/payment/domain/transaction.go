package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
)

// ParseTransactionStatus maps a stored status string back to its typed value.
func ParseTransactionStatus(value string) (TransactionStatus, error) {
	switch TransactionStatus(value) {
	case StatusPending, StatusCompleted, StatusFailed:
		return TransactionStatus(value), nil
	}
	return "", fmt.Errorf("%w: unknown transaction status %q", ErrInvalidIdentifier, value)
}

// Transaction is the immutable record of a processed order. It is created
// exactly once per validated order and never updated in place.
type Transaction struct {
	ID          TransactionID
	OrderID     OrderID
	CustomerID  CustomerID
	Amount      Money
	Status      TransactionStatus
	Timestamp   time.Time
	ProcessedAt time.Time
}

// NewTransactionFromOrder stamps a fresh id and the current instant for both
// timestamps. Status is COMPLETED; the payment step here is a business rule,
// not a gateway call.
func NewTransactionFromOrder(order Order) Transaction {
	now := time.Now().UTC()
	return Transaction{
		ID:          TransactionID(uuid.NewString()),
		OrderID:     order.ID(),
		CustomerID:  order.CustomerID(),
		Amount:      order.TotalAmount(),
		Status:      StatusCompleted,
		Timestamp:   now,
		ProcessedAt: now,
	}
}
