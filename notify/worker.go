package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Mailer hands one message to one recipient.
type Mailer interface {
	Send(ctx context.Context, to Recipient, msg Message) error
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	Log *slog.Logger
}

func (m LogMailer) Send(_ context.Context, to Recipient, msg Message) error {
	log := m.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("notification",
		"id", msg.ID,
		"type", msg.Type.String(),
		"to", to.Email,
		"subject", msg.Subject,
	)
	return nil
}

// Worker drains a Source into a Mailer.
type Worker struct {
	source  Source
	mailer  Mailer
	log     *slog.Logger
	backoff time.Duration
}

// NewWorker creates a worker.
func NewWorker(source Source, mailer Mailer, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		source:  source,
		mailer:  mailer,
		log:     log.With("component", "notify"),
		backoff: time.Second,
	}
}

// Run processes messages until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if r, ok := w.source.(interface {
		Recover(context.Context) (int, error)
	}); ok {
		n, err := r.Recover(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			w.log.Info("recovered unacknowledged messages", "count", n)
		}
	}

	w.log.Info("worker started")
	for {
		if ctx.Err() != nil {
			w.log.Info("worker stopped")
			return nil
		}
		if _, err := w.ProcessOne(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.log.Error("receive failed", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(w.backoff):
			}
		}
	}
}

// Drain delivers messages until the source reports an empty queue. One-shot
// commands use it so nothing published in-process is lost on exit.
func (w *Worker) Drain(ctx context.Context) (int, error) {
	n := 0
	for {
		handled, err := w.ProcessOne(ctx)
		if err != nil {
			return n, err
		}
		if !handled {
			return n, nil
		}
		n++
	}
}

// ProcessOne receives and delivers a single message. It reports whether a
// message was handled; an empty queue is not an error.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	d, err := w.source.Receive(ctx)
	if errors.Is(err, ErrEmptyQueue) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := w.deliver(ctx, d.Message); err != nil {
		w.log.Warn("delivery failed",
			"id", d.Message.ID,
			"type", d.Message.Type.String(),
			"attempt", d.Message.Attempts+1,
			"error", err,
		)
		if rerr := w.source.Retry(ctx, d); rerr != nil {
			return true, rerr
		}
		return true, nil
	}
	return true, w.source.Ack(ctx, d)
}

func (w *Worker) deliver(ctx context.Context, msg Message) error {
	var errs []error
	for _, to := range msg.Recipients {
		if err := w.mailer.Send(ctx, to, msg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", to.Email, err))
		}
	}
	return errors.Join(errs...)
}
