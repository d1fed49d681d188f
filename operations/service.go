/*
service.go - Application service for the division's HR operations

PURPOSE:
  Every mutating operation (assigning points, counseling, holds, time
  off, settlements, terminations) goes through Service. The service
  loads the employee's records, asks the discipline engine for a
  decision, persists the outcome and any cascading corrections, and
  queues the follow-up work (documents, notifications).

ATOMICITY:
  Each operation runs inside exactly one Store.WithTx call. Validation
  happens before the first write; any error rolls the whole cascade
  back, so no partial state is ever committed.

POST-COMMIT PIPELINE:
  Operations never generate documents or publish notifications inline.
  They append Events to an outbox while the transaction runs, and the
  Pipeline processes the outbox only after the commit succeeded. A
  rolled-back operation therefore emits nothing.

CONCURRENCY:
  Two operations on the same employee may race on the balance counters;
  the last commit wins. SQLite serialises writers, which is the only
  protection assumed.

SEE ALSO:
  - pipeline.go: Reactions run after commit
  - cascade.go: Consistency repairs shared by several operations
  - discipline/: Decision engine
*/
package operations

import (
	"context"
	"log/slog"
	"time"

	"github.com/warp/division-ops/discipline"
	"github.com/warp/division-ops/hr"
	"github.com/warp/division-ops/rules"
)

// Service implements the HR operations.
type Service struct {
	store    Store
	engine   *discipline.Engine
	pipeline *Pipeline
	clock    hr.Clock
	log      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock. Tests pin "today" with hr.FixedClock.
func WithClock(c hr.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithPipeline sets the post-commit pipeline. Without one, events are
// dropped after commit.
func WithPipeline(p *Pipeline) Option {
	return func(s *Service) { s.pipeline = p }
}

// NewService creates a service. A nil engine uses the handbook rules.
func NewService(store Store, engine *discipline.Engine, opts ...Option) *Service {
	if engine == nil {
		engine = discipline.New(nil)
	}
	s := &Service{
		store:  store,
		engine: engine,
		clock:  hr.SystemClock,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "operations")
	return s
}

// Rules returns the rule set the service decides with.
func (s *Service) Rules() *rules.RuleSet { return s.engine.Rules }

// Engine returns the discipline engine.
func (s *Service) Engine() *discipline.Engine { return s.engine }

// Store returns the underlying store.
func (s *Service) Store() Store { return s.store }

// Today returns the service's calendar date.
func (s *Service) Today() time.Time { return s.clock.Today() }

// =============================================================================
// TRANSACTION + OUTBOX
// =============================================================================

// outbox collects events produced inside a transaction.
type outbox struct {
	events []Event
}

func (o *outbox) add(e Event) { o.events = append(o.events, e) }

// run executes fn in a transaction and dispatches its events after commit.
func (s *Service) run(ctx context.Context, fn func(tx Store, out *outbox) error) error {
	var out outbox
	err := s.store.WithTx(ctx, func(tx Store) error {
		out = outbox{}
		return fn(tx, &out)
	})
	if err != nil {
		return err
	}
	s.dispatch(ctx, out.events)
	return nil
}

// dispatch hands committed events to the pipeline. Reaction failures do
// not undo the committed operation; they are logged.
func (s *Service) dispatch(ctx context.Context, events []Event) {
	if s.pipeline == nil || len(events) == 0 {
		return
	}
	if err := s.pipeline.Run(ctx, events); err != nil {
		s.log.Error("post-commit reactions failed", "events", len(events), "error", err)
	}
}

// =============================================================================
// SHARED LOOKUPS
// =============================================================================

// activeEmployee loads an employee that must still be employed.
func activeEmployee(ctx context.Context, tx Store, id int64) (*hr.Employee, error) {
	emp, err := tx.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if !emp.IsActive {
		return nil, hr.Invalid("employee_id", "%s is no longer employed", emp.FullName())
	}
	return emp, nil
}

func ptr[T any](v T) *T { return &v }
