package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PaulPerea/paymentorder/internal/payment/domain"
	"github.com/PaulPerea/paymentorder/pkg/retry"
)

// Service orchestrates one payment: validate and derive the transaction,
// persist it with bounded backoff, then attempt the best-effort audit write.
type Service struct {
	log      *slog.Logger
	payments *domain.Service
	txRepo   TransactionRepository
	audit    AuditRepository
	retryCfg retry.Config
}

func NewService(log *slog.Logger, payments *domain.Service, txRepo TransactionRepository, audit AuditRepository, retryCfg retry.Config) *Service {
	return &Service{
		log:      log,
		payments: payments,
		txRepo:   txRepo,
		audit:    audit,
		retryCfg: retryCfg,
	}
}

// ProcessPayment turns a validated order into a durable transaction.
// Validation failures propagate immediately with no writes. Persistence is
// retried per the configured backoff; an error surviving the budget is the
// caller's signal to leave the source message in the queue. Audit failures
// never surface.
func (s *Service) ProcessPayment(ctx context.Context, order domain.Order) (domain.Transaction, error) {
	startTime := time.Now().UTC()

	tx, err := s.payments.TransactionFromOrder(order)
	if err != nil {
		return domain.Transaction{}, err
	}

	cfg := s.retryCfg
	cfg.OnRetry = func(attempt int, err error) {
		s.log.Warn("transaction save retry",
			"order_id", order.ID(),
			"attempt", attempt,
			"err", err)
	}

	saved, err := retry.Do(ctx, cfg, func() (domain.Transaction, error) {
		return s.txRepo.Save(ctx, tx)
	})
	if err != nil {
		s.log.Error("transaction save failed", "order_id", order.ID(), "err", err)
		return domain.Transaction{}, fmt.Errorf("save transaction for order %s: %w", order.ID(), err)
	}

	s.recordAudit(ctx, order, saved, startTime)

	s.log.Info("transaction completed", "transaction_id", saved.ID, "order_id", saved.OrderID)
	return saved, nil
}

// recordAudit is fire-and-forget: any failure is logged and swallowed so a
// missing audit record can never invalidate a persisted transaction.
func (s *Service) recordAudit(ctx context.Context, order domain.Order, tx domain.Transaction, startTime time.Time) {
	audit := domain.NewSuccessAudit(order, tx, startTime)
	if err := s.audit.Save(ctx, audit); err != nil {
		s.log.Warn("audit save failed", "transaction_id", tx.ID, "err", err)
	}
}

// TransactionCount reports the number of durably recorded transactions.
func (s *Service) TransactionCount(ctx context.Context) (int64, error) {
	return s.txRepo.Count(ctx)
}

// IsInvalidOrder reports whether err is any of the input-validation failures
// that must not be retried.
func IsInvalidOrder(err error) bool {
	return errors.Is(err, domain.ErrInvalidOrder) ||
		errors.Is(err, domain.ErrInvalidIdentifier) ||
		errors.Is(err, domain.ErrInvalidAmount) ||
		errors.Is(err, domain.ErrInvalidItem)
}
