package workflow

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure.
type Kind string

// Error kinds.
const (
	KindValidation        Kind = "validation"
	KindUnauthorized      Kind = "unauthorized"
	KindInvalidTransition Kind = "invalid_transition"
	KindNotFound          Kind = "not_found"
	KindInsufficientStock Kind = "insufficient_stock"
	KindPersistence       Kind = "persistence"
)

// Error is returned by every engine operation that fails.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the bare sentinels below by kind, so errors.Is(err, ErrNotFound)
// holds for any not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Message != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock}
	ErrPersistence       = &Error{Kind: KindPersistence}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// persistence wraps a store failure unless it already carries a kind.
func persistence(msg string, err error) error {
	var we *Error
	if errors.As(err, &we) {
		return err
	}
	return wrapError(KindPersistence, msg, err)
}

// KindOf returns the kind of err, or "" if err is not an engine error.
func KindOf(err error) Kind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return ""
}

// IsRetryable reports whether err may succeed if the caller tries again.
// Only store failures qualify.
func IsRetryable(err error) bool {
	return KindOf(err) == KindPersistence
}
