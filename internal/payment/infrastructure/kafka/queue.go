package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/PaulPerea/paymentorder/internal/payment/application"
)

// Queue adapts a Kafka consumer group to the OrderQueue port. Fetched
// messages are tracked until Delete commits them; committing an offset also
// implies its predecessors on the same partition, so this transport is a
// coarser acknowledgment than the stream-based one.
type Queue struct {
	log       *slog.Logger
	reader    *kafka.Reader
	writer    *kafka.Writer
	dlqTopic  string
	batchSize int

	mu      sync.Mutex
	pending map[string]kafka.Message
}

func New(log *slog.Logger, brokers []string, topic, group, dlqTopic string, batchSize int) *Queue {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
	}
	return &Queue{
		log:       log,
		reader:    r,
		writer:    w,
		dlqTopic:  dlqTopic,
		batchSize: batchSize,
		pending:   make(map[string]kafka.Message),
	}
}

func (q *Queue) Close() error {
	werr := q.writer.Close()
	rerr := q.reader.Close()
	if werr != nil {
		return werr
	}
	return rerr
}

// Receive fetches up to batchSize messages, giving up on the batch once no
// message arrives within the fetch window.
func (q *Queue) Receive(ctx context.Context) ([]application.Message, error) {
	var msgs []application.Message

	for len(msgs) < q.batchSize {
		fetchCtx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
		msg, err := q.reader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				break
			}
			return nil, fmt.Errorf("fetch message: %w", err)
		}

		id := fmt.Sprintf("%s-%d-%d", msg.Topic, msg.Partition, msg.Offset)
		q.mu.Lock()
		q.pending[id] = msg
		q.mu.Unlock()

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		msgs = append(msgs, application.Message{
			ID:      id,
			Receipt: id,
			Body:    msg.Value,
			Headers: headers,
		})
	}
	return msgs, nil
}

// Delete commits the fetched message's offset.
func (q *Queue) Delete(ctx context.Context, msg application.Message) error {
	q.mu.Lock()
	kmsg, ok := q.pending[msg.Receipt]
	q.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown receipt %s", msg.Receipt)
	}

	if err := q.reader.CommitMessages(ctx, kmsg); err != nil {
		return fmt.Errorf("commit %s: %w", msg.ID, err)
	}
	q.mu.Lock()
	delete(q.pending, msg.Receipt)
	q.mu.Unlock()
	return nil
}

// DeadLetter republishes the message onto the DLQ topic and commits the
// original.
func (q *Queue) DeadLetter(ctx context.Context, msg application.Message, reason string) error {
	dlq := kafka.Message{
		Topic: q.dlqTopic,
		Value: msg.Body,
		Headers: []kafka.Header{
			{Key: "reason", Value: []byte(reason)},
			{Key: "source_id", Value: []byte(msg.ID)},
		},
	}
	if err := q.writer.WriteMessages(ctx, dlq); err != nil {
		return fmt.Errorf("dead-letter %s: %w", msg.ID, err)
	}
	q.log.Info("message dead-lettered", "message_id", msg.ID, "reason", reason)
	return q.Delete(ctx, msg)
}
