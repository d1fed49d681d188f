package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueue keeps messages in three Redis lists:
//
//	<key>:pending     published, waiting for a worker (LPUSH / BRPOPLPUSH)
//	<key>:processing  handed to a worker, not yet acknowledged
//	<key>:dead        gave up after MaxAttempts
//
// Messages left in processing by a crashed worker are moved back to
// pending by Recover.
type RedisQueue struct {
	client      *redis.Client
	pending     string
	processing  string
	dead        string
	pollTimeout time.Duration
}

// NewRedisQueue creates a queue under the given key prefix.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{
		client:      client,
		pending:     key + ":pending",
		processing:  key + ":processing",
		dead:        key + ":dead",
		pollTimeout: 5 * time.Second,
	}
}

// WithPollTimeout changes how long Receive blocks.
func (q *RedisQueue) WithPollTimeout(d time.Duration) *RedisQueue {
	q.pollTimeout = d
	return q
}

// Publish enqueues a message.
func (q *RedisQueue) Publish(ctx context.Context, msg Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	if err := q.client.LPush(ctx, q.pending, raw).Err(); err != nil {
		return fmt.Errorf("failed to publish message %s: %w", msg.ID, err)
	}
	return nil
}

// Receive moves the oldest pending message to processing and returns it.
func (q *RedisQueue) Receive(ctx context.Context) (*Delivery, error) {
	raw, err := q.client.BRPopLPush(ctx, q.pending, q.processing, q.pollTimeout).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEmptyQueue
	}
	if err != nil {
		return nil, fmt.Errorf("failed to receive message: %w", err)
	}

	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		// Undecodable payloads can never succeed.
		pipe := q.client.TxPipeline()
		pipe.LRem(ctx, q.processing, 1, raw)
		pipe.LPush(ctx, q.dead, raw)
		if _, perr := pipe.Exec(ctx); perr != nil {
			return nil, fmt.Errorf("failed to dead-letter bad payload: %w", perr)
		}
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}
	return &Delivery{Message: msg, raw: raw}, nil
}

// Ack removes a delivered message from processing.
func (q *RedisQueue) Ack(ctx context.Context, d *Delivery) error {
	if err := q.client.LRem(ctx, q.processing, 1, d.raw).Err(); err != nil {
		return fmt.Errorf("failed to ack message %s: %w", d.Message.ID, err)
	}
	return nil
}

// Retry requeues a failed message or dead-letters it.
func (q *RedisQueue) Retry(ctx context.Context, d *Delivery) error {
	msg := d.Message
	msg.Attempts++
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	target := q.pending
	if msg.Attempts >= MaxAttempts {
		target = q.dead
	}

	pipe := q.client.TxPipeline()
	pipe.LRem(ctx, q.processing, 1, d.raw)
	pipe.LPush(ctx, target, raw)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to requeue message %s: %w", msg.ID, err)
	}
	return nil
}

// Recover moves every unacknowledged message back to pending. Run it once
// at worker start-up, before any Receive.
func (q *RedisQueue) Recover(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := q.client.RPopLPush(ctx, q.processing, q.pending).Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("failed to recover messages: %w", err)
		}
		moved++
	}
}

// Depth reports the pending, processing and dead-letter list lengths.
func (q *RedisQueue) Depth(ctx context.Context) (pending, processing, dead int64, err error) {
	pipe := q.client.Pipeline()
	p := pipe.LLen(ctx, q.pending)
	pr := pipe.LLen(ctx, q.processing)
	d := pipe.LLen(ctx, q.dead)
	if _, err = pipe.Exec(ctx); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to read queue depth: %w", err)
	}
	return p.Val(), pr.Val(), d.Val(), nil
}
