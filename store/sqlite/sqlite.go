/*
Package sqlite provides a SQLite-backed implementation of operations.Store.

PURPOSE:
  Persists employees and every record hung off them: attendance and
  safety points, counseling, holds, time off, settlements and generated
  documents. One Store value serves the whole service.

TRANSACTIONS:
  WithTx begins a transaction and hands the callback a Store bound to it.
  Every query made through that Store runs on the same *sql.Tx. Calling
  WithTx on a bound Store reuses the open transaction. Writers are
  serialised by a mutex shared between the root Store and its bound
  copies.

ENCODING:
  Calendar dates:  TEXT "2006-01-02"
  Timestamps:      TEXT RFC 3339 (UTC, nanoseconds)
  Decimal points:  TEXT (shopspring/decimal string form)
  Preferences:     TEXT JSON object of type -> bool
  Documents:       BLOB

KEY TABLES:
  employees:          Aggregate root, id is the employee number
  attendance_points:  One row per incident
  safety_points:      One row per assessment
  counseling:         Optional attendance_id / safety_point_id link
  holds:              UNIQUE(employee_id), at most one per employee
  time_off_requests:  Owns days_off rows
  settlements:        Negotiated terms releasing a hold
  documents:          UNIQUE(kind, record_id), latest document per record

WAL MODE:
  SQLite is opened with WAL and foreign keys on. The pool is capped at
  one connection so ":memory:" databases stay a single database.

USAGE:
  store, err := sqlite.New("./data/hrops.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := operations.NewService(store, nil)

SEE ALSO:
  - operations/store.go: Interface definitions
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/division-ops/hr"
	"github.com/warp/division-ops/operations"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements operations.Store using SQLite.
type Store struct {
	db *sql.DB
	q  querier
	tx *sql.Tx
	mu *sync.Mutex
}

var _ operations.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, q: db, mu: &sync.Mutex{}}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id INTEGER PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		position TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		hire_date TEXT NOT NULL,
		application_date TEXT,
		classroom_date TEXT,
		termination_date TEXT,
		removal_date TEXT,
		paid_sick INTEGER NOT NULL DEFAULT 0,
		unpaid_sick INTEGER NOT NULL DEFAULT 2,
		floating_holiday INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1,
		is_pending_term INTEGER NOT NULL DEFAULT 0,
		is_staff INTEGER NOT NULL DEFAULT 0,
		is_part_time INTEGER NOT NULL DEFAULT 0,
		is_neighbor_link INTEGER NOT NULL DEFAULT 0,
		termination_type TEXT NOT NULL DEFAULT '',
		termination_comments TEXT NOT NULL DEFAULT '',
		notifications_json TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_active
		ON employees(is_active, is_staff);

	CREATE TABLE IF NOT EXISTS attendance_points (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id INTEGER NOT NULL REFERENCES employees(id),
		assigned_by INTEGER NOT NULL DEFAULT 0,
		incident_date TEXT NOT NULL,
		issued_date TEXT NOT NULL,
		reason TEXT NOT NULL,
		exemption TEXT NOT NULL DEFAULT '',
		points TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		has_document INTEGER NOT NULL DEFAULT 0,
		signed INTEGER NOT NULL DEFAULT 0,
		refused INTEGER NOT NULL DEFAULT 0,
		sign_comments TEXT NOT NULL DEFAULT '',
		uploaded INTEGER NOT NULL DEFAULT 0,
		edited_by INTEGER,
		edited_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_employee_date
		ON attendance_points(employee_id, incident_date);

	CREATE TABLE IF NOT EXISTS safety_points (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id INTEGER NOT NULL REFERENCES employees(id),
		assigned_by INTEGER NOT NULL DEFAULT 0,
		incident_date TEXT NOT NULL,
		issued_date TEXT NOT NULL,
		reason TEXT NOT NULL,
		points INTEGER NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1,
		has_document INTEGER NOT NULL DEFAULT 0,
		signed INTEGER NOT NULL DEFAULT 0,
		refused INTEGER NOT NULL DEFAULT 0,
		sign_comments TEXT NOT NULL DEFAULT '',
		uploaded INTEGER NOT NULL DEFAULT 0,
		edited_by INTEGER,
		edited_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_safety_employee_date
		ON safety_points(employee_id, incident_date);

	CREATE TABLE IF NOT EXISTS counseling (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id INTEGER NOT NULL REFERENCES employees(id),
		assigned_by INTEGER NOT NULL DEFAULT 0,
		issued_date TEXT NOT NULL,
		action_type TEXT NOT NULL,
		hearing_at TEXT,
		conduct TEXT NOT NULL DEFAULT '',
		conversation TEXT NOT NULL DEFAULT '',
		attendance_id INTEGER REFERENCES attendance_points(id),
		safety_point_id INTEGER REFERENCES safety_points(id),
		override_by INTEGER,
		is_active INTEGER NOT NULL DEFAULT 1,
		has_document INTEGER NOT NULL DEFAULT 0,
		signed INTEGER NOT NULL DEFAULT 0,
		refused INTEGER NOT NULL DEFAULT 0,
		sign_comments TEXT NOT NULL DEFAULT '',
		uploaded INTEGER NOT NULL DEFAULT 0,
		edited_by INTEGER,
		edited_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_counseling_employee
		ON counseling(employee_id, issued_date);
	CREATE INDEX IF NOT EXISTS idx_counseling_attendance
		ON counseling(attendance_id) WHERE attendance_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_counseling_safety
		ON counseling(safety_point_id) WHERE safety_point_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS holds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id INTEGER NOT NULL UNIQUE REFERENCES employees(id),
		assigned_by INTEGER NOT NULL DEFAULT 0,
		reason TEXT NOT NULL,
		other_reason TEXT NOT NULL DEFAULT '',
		hold_date TEXT NOT NULL,
		release_date TEXT,
		training_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS time_off_requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id INTEGER NOT NULL REFERENCES employees(id),
		request_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT '0',
		comments TEXT NOT NULL DEFAULT '',
		reviewed_by INTEGER,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_time_off_employee
		ON time_off_requests(employee_id);

	CREATE TABLE IF NOT EXISTS days_off (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id INTEGER NOT NULL REFERENCES time_off_requests(id) ON DELETE CASCADE,
		employee_id INTEGER NOT NULL REFERENCES employees(id),
		date TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1
	);

	-- Cap checks count requests per calendar date.
	CREATE INDEX IF NOT EXISTS idx_days_off_date
		ON days_off(date, is_active);
	CREATE INDEX IF NOT EXISTS idx_days_off_employee
		ON days_off(employee_id, is_active);

	CREATE TABLE IF NOT EXISTS settlements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id INTEGER NOT NULL REFERENCES employees(id),
		assigned_by INTEGER NOT NULL DEFAULT 0,
		issued_date TEXT NOT NULL,
		details TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		has_document INTEGER NOT NULL DEFAULT 0,
		uploaded INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS documents (
		key TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		record_id INTEGER NOT NULL,
		content_type TEXT NOT NULL,
		content BLOB NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(kind, record_id)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx runs fn against a Store bound to one database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx operations.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	bound := &Store{db: s.db, q: sqlTx, tx: sqlTx, mu: s.mu}
	if err := fn(bound); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// atomic runs fn in the bound transaction, or in a fresh one.
func (s *Store) atomic(ctx context.Context, fn func(s *Store) error) error {
	return s.WithTx(ctx, func(tx operations.Store) error {
		return fn(tx.(*Store))
	})
}

// Reset deletes all data. Used by tests and demo setups.
func (s *Store) Reset(ctx context.Context) error {
	return s.atomic(ctx, func(tx *Store) error {
		for _, table := range []string{
			"documents", "days_off", "time_off_requests", "settlements", "holds",
			"counseling", "safety_points", "attendance_points", "employees",
		} {
			if _, err := tx.q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to reset %s: %w", table, err)
			}
		}
		return nil
	})
}

// =============================================================================
// ENCODING HELPERS
// =============================================================================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func formatDate(t time.Time) string { return t.Format(hr.DateLayout) }

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatDate(*t)
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func intPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// decoder parses stored text columns and keeps the first failure.
type decoder struct {
	err error
}

func (d *decoder) fail(column, raw string, err error) {
	if d.err == nil {
		d.err = fmt.Errorf("failed to decode %s %q: %w", column, raw, err)
	}
}

func (d *decoder) date(column, raw string) time.Time {
	t, err := time.ParseInLocation(hr.DateLayout, raw, time.UTC)
	if err != nil {
		d.fail(column, raw, err)
	}
	return t
}

func (d *decoder) datePtr(column string, raw sql.NullString) *time.Time {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	t := d.date(column, raw.String)
	return &t
}

func (d *decoder) time(column, raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		d.fail(column, raw, err)
	}
	return t
}

func (d *decoder) timePtr(column string, raw sql.NullString) *time.Time {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	t := d.time(column, raw.String)
	return &t
}

func (d *decoder) decimal(column, raw string) decimal.Decimal {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		d.fail(column, raw, err)
	}
	return v
}

// notFound maps sql.ErrNoRows to an hr.NotFoundError.
func notFound(err error, kind string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return hr.NotFound(kind, id)
	}
	return fmt.Errorf("failed to load %s %d: %w", kind, id, err)
}

// mustAffect returns NotFound when an UPDATE or DELETE matched nothing.
func mustAffect(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return hr.NotFound(kind, id)
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
