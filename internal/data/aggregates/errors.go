package aggregates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/recharge-backend/internal/platform/apierr"
)

// Failure kinds an aggregate write can end in. Match with errors.Is.
var (
	ErrValidation = errors.New("aggregate validation")
	ErrInvariant  = errors.New("aggregate invariant violation")
	ErrConflict   = errors.New("aggregate conflict")
	ErrRetryable  = errors.New("aggregate retryable")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.kind.Error() + ": " + e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func ValidationError(msg string) error { return &kindError{ErrValidation, strings.TrimSpace(msg)} }
func InvariantError(msg string) error  { return &kindError{ErrInvariant, strings.TrimSpace(msg)} }
func ConflictError(msg string) error   { return &kindError{ErrConflict, strings.TrimSpace(msg)} }
func RetryableError(msg string) error  { return &kindError{ErrRetryable, strings.TrimSpace(msg)} }

// Postgres SQLSTATEs a write can hit under contention.
var pgKinds = map[string]error{
	"23505": ErrConflict,  // unique_violation
	"40001": ErrRetryable, // serialization_failure
	"40P01": ErrRetryable, // deadlock_detected
	"55P03": ErrRetryable, // lock_not_available
}

// storeKind recognises driver errors that mean conflict or retry. SQLite only
// reports these through its message text.
func storeKind(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgKinds[pgErr.Code]
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint failed"), strings.Contains(msg, "duplicate key"):
		return ErrConflict
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "deadlock"):
		return ErrRetryable
	}
	return nil
}

// MapError turns an aggregate failure into an API error, or into an
// ErrRetryable wrap for transient store trouble. API errors pass through.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return err
	}

	kind := storeKind(err)
	switch {
	case errors.Is(err, ErrValidation):
		return apierr.Invalid("validation_failed", "%s: %v", op, err)
	case errors.Is(err, ErrConflict), kind == ErrConflict:
		return apierr.Conflict("conflict", "%s: %v", op, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apierr.NotFound("not_found", "%s: %v", op, err)
	case errors.Is(err, ErrRetryable):
		return fmt.Errorf("%s: %w", op, err)
	case kind == ErrRetryable, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrRetryable, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Status is the outcome label recorded for err.
func Status(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrRetryable):
		return "retryable"
	case errors.Is(err, apierr.ErrConflict):
		return "conflict"
	case errors.Is(err, apierr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apierr.ErrInvalidArgument):
		return "invalid"
	}
	return "failure"
}
