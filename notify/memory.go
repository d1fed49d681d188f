package notify

import (
	"context"
	"sync"
	"time"
)

// MemoryQueue is an in-process Source and Publisher. It keeps a log of
// everything published so tests can inspect it.
type MemoryQueue struct {
	mu          sync.Mutex
	pending     []Message
	published   []Message
	dead        []Message
	signal      chan struct{}
	pollTimeout time.Duration
}

// NewMemoryQueue creates an empty queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		signal:      make(chan struct{}, 1),
		pollTimeout: time.Second,
	}
}

func (q *MemoryQueue) Publish(_ context.Context, msg Message) error {
	q.mu.Lock()
	q.pending = append(q.pending, msg)
	q.published = append(q.published, msg)
	q.mu.Unlock()
	q.wake()
	return nil
}

func (q *MemoryQueue) Receive(ctx context.Context) (*Delivery, error) {
	timer := time.NewTimer(q.pollTimeout)
	defer timer.Stop()

	for {
		q.mu.Lock()
		if len(q.pending) > 0 {
			msg := q.pending[0]
			q.pending = q.pending[1:]
			q.mu.Unlock()
			return &Delivery{Message: msg}, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return nil, ErrEmptyQueue
		case <-q.signal:
		}
	}
}

func (q *MemoryQueue) Ack(context.Context, *Delivery) error { return nil }

func (q *MemoryQueue) Retry(_ context.Context, d *Delivery) error {
	msg := d.Message
	msg.Attempts++
	q.mu.Lock()
	if msg.Attempts >= MaxAttempts {
		q.dead = append(q.dead, msg)
	} else {
		q.pending = append(q.pending, msg)
	}
	q.mu.Unlock()
	q.wake()
	return nil
}

// Published returns every message published so far.
func (q *MemoryQueue) Published() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Message(nil), q.published...)
}

// Dead returns the dead-lettered messages.
func (q *MemoryQueue) Dead() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Message(nil), q.dead...)
}

// Reset drops all state.
func (q *MemoryQueue) Reset() {
	q.mu.Lock()
	q.pending, q.published, q.dead = nil, nil, nil
	q.mu.Unlock()
}

func (q *MemoryQueue) wake() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}
