/*
Package notify delivers notification messages asynchronously.

PURPOSE:
  The operations service publishes one Message per notification event
  after its transaction commits. A Worker drains the queue and hands each
  message to a Mailer, once per recipient. Email delivery itself (SMTP,
  templates) is an external collaborator behind the Mailer interface.

DELIVERY SEMANTICS:
  At-least-once, unordered. A message is removed from the queue only
  after every recipient was handed to the Mailer. A failed delivery is
  requeued with its attempt counter raised; after MaxAttempts it moves
  to the dead-letter list. Recipients may therefore receive duplicates;
  Message.ID is stable across retries so a Mailer can de-duplicate.

QUEUES:
  RedisQueue   Redis lists (pending -> processing -> ack)
  MemoryQueue  In-process queue for tests and single-process runs

SEE ALSO:
  - redis.go: Redis-backed queue
  - worker.go: Queue consumer
  - operations/pipeline.go: Publisher side
*/
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/warp/division-ops/hr"
)

// ErrEmptyQueue is returned by Receive when no message arrived in time.
var ErrEmptyQueue = errors.New("queue empty")

// Recipient is one addressee of a message.
type Recipient struct {
	EmployeeID int64  `json:"employee_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// Message is one notification event with its resolved recipients.
type Message struct {
	ID         string              `json:"id"`
	Type       hr.NotificationType `json:"type"`
	Subject    string              `json:"subject"`
	Body       string              `json:"body"`
	Recipients []Recipient         `json:"recipients"`
	Context    map[string]string   `json:"context,omitempty"`
	Attempts   int                 `json:"attempts"`
	CreatedAt  time.Time           `json:"created_at"`
}

// NewMessage builds a message with a fresh ID.
func NewMessage(t hr.NotificationType, subject, body string, recipients []Recipient) Message {
	return Message{
		ID:         uuid.NewString(),
		Type:       t,
		Subject:    subject,
		Body:       body,
		Recipients: recipients,
		CreatedAt:  time.Now().UTC(),
	}
}

// Publisher accepts messages for asynchronous delivery.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Delivery is a received, not yet acknowledged message.
type Delivery struct {
	Message Message
	raw     string
}

// Source hands out messages to a Worker.
type Source interface {
	// Receive waits up to the queue's poll timeout for a message and
	// returns ErrEmptyQueue if none arrived.
	Receive(ctx context.Context) (*Delivery, error)
	Ack(ctx context.Context, d *Delivery) error
	// Retry puts the message back with its attempt counter raised, or
	// dead-letters it once MaxAttempts is reached.
	Retry(ctx context.Context, d *Delivery) error
}

// MaxAttempts bounds redelivery of a failing message.
const MaxAttempts = 5
