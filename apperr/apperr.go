// Package apperr defines the application-level error kinds surfaced to API
// clients. Lower layers return these; the HTTP layer maps them to status
// codes.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sentinel errors
// ─────────────────────────────────────────────────────────────────────────────

var (
	// ErrBadRequest marks client input that cannot be processed.
	ErrBadRequest = errors.New("bad request")

	// ErrNotFound marks a lookup, update or delete whose target row is missing.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized marks missing credentials or a failed route guard.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden marks an authenticated caller acting outside its rights.
	ErrForbidden = errors.New("forbidden")
)

func IsBadRequest(err error) bool   { return errors.Is(err, ErrBadRequest) }
func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }
func IsForbidden(err error) bool    { return errors.Is(err, ErrForbidden) }

// ─────────────────────────────────────────────────────────────────────────────
// Error
// ─────────────────────────────────────────────────────────────────────────────

// Error pairs a sentinel kind with a client-facing message. Details carries
// per-field validation messages; Cause keeps the lower-level error, if any.
type Error struct {
	Sentinel error
	Message  string
	Details  []string
	Cause    error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Sentinel.Error()
	}
	if len(e.Details) > 0 {
		msg += ": " + strings.Join(e.Details, "; ")
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *Error) Is(target error) bool { return errors.Is(e.Sentinel, target) }
func (e *Error) Unwrap() error        { return e.Cause }

// BadRequest returns an ErrBadRequest error with optional detail lines.
func BadRequest(msg string, details ...string) error {
	return &Error{Sentinel: ErrBadRequest, Message: msg, Details: details}
}

// NotFound returns an ErrNotFound error with a formatted message.
func NotFound(format string, args ...any) error {
	return &Error{Sentinel: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized returns an ErrUnauthorized error.
func Unauthorized(msg string) error {
	return &Error{Sentinel: ErrUnauthorized, Message: msg}
}

// Forbidden returns an ErrForbidden error.
func Forbidden(msg string) error {
	return &Error{Sentinel: ErrForbidden, Message: msg}
}

// Wrap attaches cause to an error of the given kind.
func Wrap(sentinel error, cause error, msg string) error {
	return &Error{Sentinel: sentinel, Message: msg, Cause: cause}
}

// Message returns the client-facing message and details of err. Errors that
// are not *Error report their sentinel text only.
func Message(err error) (string, []string) {
	var ae *Error
	if errors.As(err, &ae) {
		msg := ae.Message
		if msg == "" {
			msg = ae.Sentinel.Error()
		}
		return msg, ae.Details
	}
	return err.Error(), nil
}
