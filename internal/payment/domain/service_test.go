package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateForPayment(t *testing.T) {
	svc := NewService()

	err := svc.ValidateForPayment(Order{})
	assert.ErrorIs(t, err, ErrInvalidOrder)

	order, err := NewOrder("O-1", "C-1", validItems(t), NewMoneyFromFloat(42.5))
	require.NoError(t, err)
	assert.NoError(t, svc.ValidateForPayment(order))
}

func TestTransactionFromOrder(t *testing.T) {
	svc := NewService()
	order, err := NewOrder("O-1", "C-1", validItems(t), NewMoneyFromFloat(42.5))
	require.NoError(t, err)

	start := time.Now().UTC()
	tx, err := svc.TransactionFromOrder(order)
	require.NoError(t, err)

	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, order.ID(), tx.OrderID)
	assert.Equal(t, order.CustomerID(), tx.CustomerID)
	assert.True(t, order.TotalAmount().Equal(tx.Amount))
	assert.Equal(t, StatusCompleted, tx.Status)
	assert.False(t, tx.Timestamp.Before(start))
	assert.False(t, tx.ProcessedAt.Before(start))
}

func TestTransactionFromOrderUniqueIDs(t *testing.T) {
	svc := NewService()
	order, err := NewOrder("O-1", "C-1", validItems(t), NewMoneyFromFloat(42.5))
	require.NoError(t, err)

	a, err := svc.TransactionFromOrder(order)
	require.NoError(t, err)
	b, err := svc.TransactionFromOrder(order)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestParseTransactionStatus(t *testing.T) {
	for _, valid := range []string{"PENDING", "COMPLETED", "FAILED"} {
		status, err := ParseTransactionStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, TransactionStatus(valid), status)
	}

	_, err := ParseTransactionStatus("SETTLED")
	assert.Error(t, err)
}

func TestNewSuccessAudit(t *testing.T) {
	order, err := NewOrder("O-1", "C-1", validItems(t), NewMoneyFromFloat(42.5))
	require.NoError(t, err)
	tx := NewTransactionFromOrder(order)

	start := time.Now().UTC().Add(-50 * time.Millisecond)
	audit := NewSuccessAudit(order, tx, start)

	assert.NotEmpty(t, audit.AuditID)
	assert.Equal(t, AuditEventPaymentProcessed, audit.EventType)
	assert.Equal(t, AuditStatusSuccess, audit.Status)
	assert.Equal(t, tx.ID, audit.Transaction.ID)
	assert.Equal(t, order.ID(), audit.Order.ID())
	assert.GreaterOrEqual(t, audit.ProcessingTime, 50*time.Millisecond)
}
