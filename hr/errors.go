/*
errors.go - Error types shared by the discipline engine and its workflows

PURPOSE:
  All error types in one place. Operations return these (possibly
  wrapped with fmt.Errorf("...: %w")), and the API maps them to HTTP
  statuses with the helpers at the bottom of the file.

ERROR CATEGORIES:
  1. Validation errors - field-level rejections raised before persistence
  2. Not found errors  - a referenced record does not exist
  3. Integrity errors  - unknown codes in stored data (not user-recoverable)

ABSENT RELATIONS:
  A missing counseling or hold is NOT an error. Stores return a nil
  pointer for those lookups.

SEE ALSO:
  - operations/: Raises validation errors
  - api/handlers.go: Maps errors to statuses
*/
package hr

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation marks user-facing rejections.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a record already exists.
	ErrConflict = errors.New("conflict")

	// ErrUnknownCode is returned for a code missing from the rule tables.
	ErrUnknownCode = errors.New("unknown code")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldError is a rejection tied to one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field-level rejections.
type ValidationError struct {
	Fields []FieldError
}

// Invalid builds a single-field validation error.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: fmt.Sprintf(format, args...)}}}
}

// Add appends a field rejection.
func (e *ValidationError) Add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// OrNil returns nil when no field was rejected.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Field == "" {
			parts = append(parts, f.Message)
			continue
		}
		parts = append(parts, f.Field+": "+f.Message)
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError names the missing record.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NotFound builds a NotFoundError.
func NotFound(kind string, id int64) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// UnknownCodeError reports a code that has no entry in a lookup table.
type UnknownCodeError struct {
	Table string
	Code  string
}

func (e *UnknownCodeError) Error() string {
	return fmt.Sprintf("unknown %s code %q", e.Table, e.Code)
}

func (e *UnknownCodeError) Unwrap() error {
	return ErrUnknownCode
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrConflict)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
