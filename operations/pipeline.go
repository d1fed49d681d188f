package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/warp/division-ops/document"
	"github.com/warp/division-ops/hr"
	"github.com/warp/division-ops/notify"
)

// =============================================================================
// EVENTS
// =============================================================================

// Event is one follow-up produced by a committed operation. An event may
// ask for a document, a notification, or both.
type Event struct {
	EmployeeID int64
	// ActorID is excluded from the notification's recipients.
	ActorID int64

	// Document names the record whose document must be (re)generated.
	Document *hr.RecordRef

	Notification hr.NotificationType
	Subject      string
	Message      string
	Context      map[string]string
}

func documentEvent(employeeID int64, kind hr.RecordKind, id int64) Event {
	return Event{EmployeeID: employeeID, Document: &hr.RecordRef{Kind: kind, ID: id}}
}

func notificationEvent(actor int64, emp *hr.Employee, t hr.NotificationType, message string) Event {
	return Event{
		EmployeeID:   emp.ID,
		ActorID:      actor,
		Notification: t,
		Subject:      fmt.Sprintf("%s: %s", t.String(), emp.FullName()),
		Message:      message,
		Context: map[string]string{
			"employee_id":   fmt.Sprint(emp.ID),
			"employee_name": emp.FullName(),
		},
	}
}

// =============================================================================
// PIPELINE
// =============================================================================

// Reaction handles committed events. Handle ignores events it has no
// interest in.
type Reaction interface {
	Name() string
	Handle(ctx context.Context, e Event) error
}

// Pipeline runs its reactions, in order, for every event. Each reaction
// is retried independently; a failing reaction does not stop the others.
type Pipeline struct {
	Reactions []Reaction
	Attempts  int
	Backoff   time.Duration
	Log       *slog.Logger
}

// NewPipeline creates a pipeline with three attempts per reaction.
func NewPipeline(log *slog.Logger, reactions ...Reaction) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		Reactions: reactions,
		Attempts:  3,
		Backoff:   200 * time.Millisecond,
		Log:       log.With("component", "pipeline"),
	}
}

// Run processes events and returns the joined errors of reactions that
// still failed after all attempts.
func (p *Pipeline) Run(ctx context.Context, events []Event) error {
	var errs []error
	for _, e := range events {
		for _, r := range p.Reactions {
			if err := p.attempt(ctx, r, e); err != nil {
				errs = append(errs, fmt.Errorf("%s for employee %d: %w", r.Name(), e.EmployeeID, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (p *Pipeline) attempt(ctx context.Context, r Reaction, e Event) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			p.Log.Warn("retrying reaction", "reaction", r.Name(), "attempt", i+1, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Backoff * time.Duration(i)):
			}
		}
		if err = r.Handle(ctx, e); err == nil {
			return nil
		}
		// Missing records will not appear on retry.
		if hr.IsNotFound(err) {
			return err
		}
	}
	return err
}

// =============================================================================
// DOCUMENT REACTION
// =============================================================================

// DocumentReaction generates and attaches the document of a record.
type DocumentReaction struct {
	Builder   *DocumentBuilder
	Generator document.Generator
	Store     DocumentStore
	Clock     hr.Clock
}

func (r *DocumentReaction) Name() string { return "document" }

func (r *DocumentReaction) Handle(ctx context.Context, e Event) error {
	if e.Document == nil {
		return nil
	}
	rec, err := r.Builder.Build(ctx, *e.Document)
	if err != nil {
		return err
	}
	content, err := r.Generator.Generate(ctx, rec)
	if err != nil {
		return fmt.Errorf("failed to generate %s %d: %w", e.Document.Kind, e.Document.ID, err)
	}
	return r.Store.SaveDocument(ctx, hr.Document{
		Key:         uuid.NewString(),
		Ref:         *e.Document,
		ContentType: r.Generator.ContentType(),
		Content:     content,
		CreatedAt:   r.Clock.Now(),
	})
}

// =============================================================================
// NOTIFICATION REACTION
// =============================================================================

// NotificationReaction resolves the subscribed staff and publishes one
// message per event.
type NotificationReaction struct {
	Employees EmployeeStore
	Publisher notify.Publisher
}

func (r *NotificationReaction) Name() string { return "notification" }

func (r *NotificationReaction) Handle(ctx context.Context, e Event) error {
	if e.Notification == "" {
		return nil
	}
	recipients, err := Recipients(ctx, r.Employees, e.Notification, e.ActorID)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		return nil
	}
	msg := notify.NewMessage(e.Notification, e.Subject, e.Message, recipients)
	msg.Context = e.Context
	return r.Publisher.Publish(ctx, msg)
}

// Recipients returns the active staff subscribed to t, minus anyone
// without an email address. The actor is left out unless t notifies the
// actor too.
func Recipients(ctx context.Context, store EmployeeStore, t hr.NotificationType, actor int64) ([]notify.Recipient, error) {
	staff, err := store.ListEmployees(ctx, EmployeeFilter{ActiveOnly: true, StaffOnly: true})
	if err != nil {
		return nil, err
	}
	skipActor := !t.NotifiesActor()
	var out []notify.Recipient
	for _, emp := range staff {
		if (skipActor && emp.ID == actor) || emp.Email == "" || !emp.Notifications.Wants(t) {
			continue
		}
		out = append(out, notify.Recipient{EmployeeID: emp.ID, Name: emp.FullName(), Email: emp.Email})
	}
	return out, nil
}
