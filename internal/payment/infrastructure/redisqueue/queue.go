package redisqueue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/PaulPerea/paymentorder/internal/payment/application"
)

const bodyField = "body"

// Queue adapts a Redis Stream consumer group to the OrderQueue port.
// Entries read but never acked stay in the pending entries list and are
// reclaimed after the visibility timeout, which gives the at-least-once
// redelivery the pipeline relies on.
type Queue struct {
	log        *slog.Logger
	rdb        *redis.Client
	stream     string
	dlqStream  string
	group      string
	consumer   string
	batchSize  int64
	visibility time.Duration
}

type Options struct {
	Stream     string
	DLQStream  string
	Group      string
	Consumer   string
	BatchSize  int64
	Visibility time.Duration
}

func New(log *slog.Logger, rdb *redis.Client, opts Options) *Queue {
	return &Queue{
		log:        log,
		rdb:        rdb,
		stream:     opts.Stream,
		dlqStream:  opts.DLQStream,
		group:      opts.Group,
		consumer:   opts.Consumer,
		batchSize:  opts.BatchSize,
		visibility: opts.Visibility,
	}
}

// EnsureGroup creates the stream and consumer group if missing.
func (q *Queue) EnsureGroup(ctx context.Context) error {
	err := q.rdb.XGroupCreateMkStream(ctx, q.stream, q.group, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group %s on %s: %w", q.group, q.stream, err)
	}
	return nil
}

// Receive first reclaims entries whose previous consumer went silent for the
// visibility timeout, then reads fresh entries. Both sources count against
// the batch size.
func (q *Queue) Receive(ctx context.Context) ([]application.Message, error) {
	var msgs []application.Message

	claimed, _, err := q.rdb.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   q.stream,
		Group:    q.group,
		Consumer: q.consumer,
		MinIdle:  q.visibility,
		Start:    "0-0",
		Count:    q.batchSize,
	}).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("autoclaim from %s: %w", q.stream, err)
	}
	for _, m := range claimed {
		msgs = append(msgs, q.toMessage(m))
	}

	remaining := q.batchSize - int64(len(msgs))
	if remaining <= 0 {
		return msgs, nil
	}

	streams, err := q.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: q.consumer,
		Streams:  []string{q.stream, ">"},
		Count:    remaining,
		Block:    100 * time.Millisecond,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return msgs, nil
		}
		return nil, fmt.Errorf("read group %s from %s: %w", q.group, q.stream, err)
	}
	for _, s := range streams {
		for _, m := range s.Messages {
			msgs = append(msgs, q.toMessage(m))
		}
	}
	return msgs, nil
}

// Delete acknowledges the entry and removes it from the stream.
func (q *Queue) Delete(ctx context.Context, msg application.Message) error {
	if err := q.rdb.XAck(ctx, q.stream, q.group, msg.Receipt).Err(); err != nil {
		return fmt.Errorf("ack %s: %w", msg.ID, err)
	}
	if err := q.rdb.XDel(ctx, q.stream, msg.Receipt).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", msg.ID, err)
	}
	return nil
}

// DeadLetter copies the entry onto the DLQ stream with the failure reason,
// then acks the original so it cannot be redelivered forever.
func (q *Queue) DeadLetter(ctx context.Context, msg application.Message, reason string) error {
	err := q.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: q.dlqStream,
		Values: map[string]any{
			bodyField:   string(msg.Body),
			"reason":    reason,
			"source_id": msg.ID,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("dead-letter %s: %w", msg.ID, err)
	}
	q.log.Info("message dead-lettered", "message_id", msg.ID, "reason", reason)
	return q.Delete(ctx, msg)
}

func (q *Queue) toMessage(m redis.XMessage) application.Message {
	msg := application.Message{
		ID:      m.ID,
		Receipt: m.ID,
		Headers: map[string]string{},
	}
	for k, v := range m.Values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if k == bodyField {
			msg.Body = []byte(s)
			continue
		}
		msg.Headers[k] = s
	}
	return msg
}
