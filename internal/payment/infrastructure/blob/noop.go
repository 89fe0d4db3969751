package blob

import (
	"context"
	"log/slog"

	"github.com/PaulPerea/paymentorder/internal/payment/domain"
)

// NoOpAuditStore is the variant selected when auditing is disabled. It is a
// valid AuditRepository in its own right, not a nil dependency.
type NoOpAuditStore struct {
	log *slog.Logger
}

func NewNoOpAuditStore(log *slog.Logger) *NoOpAuditStore {
	log.Info("audit disabled, using no-op audit store")
	return &NoOpAuditStore{log: log}
}

func (s *NoOpAuditStore) Save(_ context.Context, audit domain.AuditLog) error {
	s.log.Debug("audit skipped", "transaction_id", audit.Transaction.ID)
	return nil
}
