package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/PaulPerea/paymentorder/internal/payment/domain"
)

// Repository persists transactions. Save upserts by order id so redelivery
// of an already-processed message converges on the first durable record
// instead of creating a second transaction for the same order.
type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// EnsureSchema creates the transactions table when it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS transactions (
			id           text PRIMARY KEY,
			order_id     text NOT NULL UNIQUE,
			customer_id  text NOT NULL,
			amount       numeric(14,2) NOT NULL,
			status       text NOT NULL,
			timestamp    timestamptz NOT NULL,
			processed_at timestamptz NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure transactions schema: %w", err)
	}
	return nil
}

func (r *Repository) Save(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO transactions (id, order_id, customer_id, amount, status, timestamp, processed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (order_id) DO UPDATE SET status=EXCLUDED.status, processed_at=EXCLUDED.processed_at
		RETURNING id, order_id, customer_id, amount, status, timestamp, processed_at`,
		string(tx.ID), string(tx.OrderID), string(tx.CustomerID),
		tx.Amount.Amount(), string(tx.Status), tx.Timestamp, tx.ProcessedAt)

	saved, err := scanTransaction(row)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("save transaction %s: %w", tx.ID, err)
	}
	r.log.Debug("transaction saved", "transaction_id", saved.ID, "order_id", saved.OrderID)
	return saved, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM transactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var (
		tx     domain.Transaction
		id     string
		order  string
		cust   string
		amount decimal.Decimal
		status string
	)
	if err := row.Scan(&id, &order, &cust, &amount, &status, &tx.Timestamp, &tx.ProcessedAt); err != nil {
		return domain.Transaction{}, err
	}

	parsed, err := domain.ParseTransactionStatus(status)
	if err != nil {
		return domain.Transaction{}, err
	}
	tx.ID = domain.TransactionID(id)
	tx.OrderID = domain.OrderID(order)
	tx.CustomerID = domain.CustomerID(cust)
	tx.Amount = domain.NewMoney(amount)
	tx.Status = parsed
	return tx, nil
}
