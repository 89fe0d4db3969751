package processor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulPerea/paymentorder/internal/payment/application"
	"github.com/PaulPerea/paymentorder/internal/payment/domain"
	"github.com/PaulPerea/paymentorder/pkg/metrics"
	"github.com/PaulPerea/paymentorder/pkg/retry"
)

const validBody = `{"order_id":"O-1","customer_id":"C-1","items":[{"product_id":"P-1","quantity":2}],"total_amount":30.5}`

type fakeQueue struct {
	mu           sync.Mutex
	msgs         []application.Message
	deleted      []string
	deadLettered []string
	deleteErr    error
}

// Receive hands out the pending batch once; undeleted messages are
// re-enqueued by the test itself when redelivery matters.
func (q *fakeQueue) Receive(context.Context) ([]application.Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	batch := q.msgs
	q.msgs = nil
	return batch, nil
}

func (q *fakeQueue) Delete(_ context.Context, msg application.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.deleteErr != nil {
		return q.deleteErr
	}
	q.deleted = append(q.deleted, msg.ID)
	return nil
}

func (q *fakeQueue) DeadLetter(_ context.Context, msg application.Message, _ string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.deadLettered = append(q.deadLettered, msg.ID)
	return nil
}

func (q *fakeQueue) deletedIDs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.deleted...)
}

func (q *fakeQueue) deadLetteredIDs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.deadLettered...)
}

type memTxRepo struct {
	mu      sync.Mutex
	saveErr error
	byOrder map[domain.OrderID]domain.Transaction
}

func newMemTxRepo() *memTxRepo {
	return &memTxRepo{byOrder: make(map[domain.OrderID]domain.Transaction)}
}

func (r *memTxRepo) Save(_ context.Context, tx domain.Transaction) (domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return domain.Transaction{}, r.saveErr
	}
	if existing, ok := r.byOrder[tx.OrderID]; ok {
		return existing, nil
	}
	r.byOrder[tx.OrderID] = tx
	return tx, nil
}

func (r *memTxRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byOrder)), nil
}

type memAuditRepo struct{}

func (memAuditRepo) Save(context.Context, domain.AuditLog) error { return nil }

func newTestProcessor(t *testing.T, queue *fakeQueue, repo *memTxRepo) *Processor {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	cfg := retry.Config{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond, Multiplier: 2}
	svc := application.NewService(log, domain.NewService(), repo, memAuditRepo{}, cfg)
	met := metrics.New(prometheus.NewRegistry())
	return New(log, queue, svc, 10*time.Millisecond, 4, met)
}

func msg(id, body string) application.Message {
	return application.Message{ID: id, Receipt: id, Body: []byte(body)}
}

func TestProcessorAcksAfterDurableSave(t *testing.T) {
	queue := &fakeQueue{msgs: []application.Message{msg("m1", validBody)}}
	repo := newMemTxRepo()
	p := newTestProcessor(t, queue, repo)

	p.poll(context.Background())

	require.Eventually(t, func() bool {
		count, _ := repo.Count(context.Background())
		return count == 1 && len(queue.deletedIDs()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"m1"}, queue.deletedIDs())
	assert.Empty(t, queue.deadLetteredIDs())
}

func TestProcessorLeavesMessageOnValidationFailure(t *testing.T) {
	// Decodes as JSON but fails domain validation (non-positive total).
	body := `{"order_id":"O-1","customer_id":"C-1","items":[{"product_id":"P-1","quantity":1}],"total_amount":0}`
	queue := &fakeQueue{msgs: []application.Message{msg("m1", body)}}
	repo := newMemTxRepo()
	p := newTestProcessor(t, queue, repo)

	p.poll(context.Background())
	time.Sleep(100 * time.Millisecond)

	count, _ := repo.Count(context.Background())
	assert.Zero(t, count, "no transaction for invalid order")
	assert.Empty(t, queue.deletedIDs(), "message must stay in the queue")
	assert.Empty(t, queue.deadLetteredIDs())
}

func TestProcessorDeadLettersPoisonMessages(t *testing.T) {
	queue := &fakeQueue{msgs: []application.Message{msg("m1", `{"order_id": not json`)}}
	repo := newMemTxRepo()
	p := newTestProcessor(t, queue, repo)

	p.poll(context.Background())

	require.Eventually(t, func() bool {
		return len(queue.deadLetteredIDs()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	count, _ := repo.Count(context.Background())
	assert.Zero(t, count)
	assert.Empty(t, queue.deletedIDs())
}

func TestProcessorLeavesMessageOnPersistenceFailure(t *testing.T) {
	queue := &fakeQueue{msgs: []application.Message{msg("m1", validBody)}}
	repo := newMemTxRepo()
	repo.saveErr = errors.New("store unavailable")
	p := newTestProcessor(t, queue, repo)

	p.poll(context.Background())
	time.Sleep(150 * time.Millisecond)

	assert.Empty(t, queue.deletedIDs(), "unpersisted message must stay queued")
	assert.Empty(t, queue.deadLetteredIDs())
}

func TestProcessorSwallowsDeleteFailure(t *testing.T) {
	queue := &fakeQueue{
		msgs:      []application.Message{msg("m1", validBody)},
		deleteErr: errors.New("transport error"),
	}
	repo := newMemTxRepo()
	p := newTestProcessor(t, queue, repo)

	p.poll(context.Background())

	// The transaction is durable even though the ack failed; redelivery
	// would converge on the same record via the upsert.
	require.Eventually(t, func() bool {
		count, _ := repo.Count(context.Background())
		return count == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, queue.deletedIDs())
}

func TestProcessorRunPollsOnTicker(t *testing.T) {
	queue := &fakeQueue{msgs: []application.Message{msg("m1", validBody)}}
	repo := newMemTxRepo()
	p := newTestProcessor(t, queue, repo)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(queue.deletedIDs()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
