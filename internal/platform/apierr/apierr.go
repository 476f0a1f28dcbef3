package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
)

// Error carries the HTTP status and machine code a handler should surface.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// NotFound reports an unknown profession, quest or user. Callers should
// re-validate the identifier rather than retry.
func NotFound(code, format string, args ...any) *Error {
	return New(http.StatusNotFound, code, wrap(ErrNotFound, format, args...))
}

// Forbidden reports a non-admin caller on an admin operation.
func Forbidden(code, format string, args ...any) *Error {
	return New(http.StatusForbidden, code, wrap(ErrForbidden, format, args...))
}

func Invalid(code, format string, args ...any) *Error {
	return New(http.StatusBadRequest, code, wrap(ErrInvalidArgument, format, args...))
}

func Conflict(code, format string, args ...any) *Error {
	return New(http.StatusConflict, code, wrap(ErrConflict, format, args...))
}

func wrap(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// StatusOf returns the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}
