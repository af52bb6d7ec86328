// Package errs defines the closed set of domain error kinds that may cross the
// service/HTTP boundary. No other error kind should reach internal/httpapi.
package errs

import (
	"errors"
	"fmt"
)

// Kind is one of a fixed set of machine-readable error codes.
type Kind string

const (
	KindLedgerNotFound     Kind = "LEDGER_NOT_FOUND"
	KindInvariantViolation Kind = "INVARIANT_VIOLATION"
	KindRepositoryError    Kind = "REPOSITORY_ERROR"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindForbidden          Kind = "FORBIDDEN"
)

// Error is the single error type that crosses service boundaries.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newErr(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func LedgerNotFound(ledgerID string) *Error {
	return newErr(KindLedgerNotFound, fmt.Sprintf("ledger not found: %s", ledgerID), nil)
}

func InvariantViolation(msg string) *Error {
	return newErr(KindInvariantViolation, msg, nil)
}

func InvariantViolationf(format string, args ...interface{}) *Error {
	return newErr(KindInvariantViolation, fmt.Sprintf(format, args...), nil)
}

func RepositoryError(cause error) *Error {
	return newErr(KindRepositoryError, "internal server error", cause)
}

func Unauthorized(msg string) *Error {
	return newErr(KindUnauthorized, msg, nil)
}

func Forbidden(msg string) *Error {
	return newErr(KindForbidden, msg, nil)
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
