package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies a domain error for callers that need to branch on it.
type ErrorKind string

const (
	KindInvalidRequest            ErrorKind = "invalid_request"
	KindInvalidTransition         ErrorKind = "invalid_transition"
	KindCancellationWindowExpired ErrorKind = "cancellation_window_expired"
	KindBookingNotFound           ErrorKind = "booking_not_found"
	KindDuplicateBooking          ErrorKind = "duplicate_booking"
)

// Error is the typed error returned by the quote engine, the lifecycle and the stores.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrInvalidRequest            = &Error{Kind: KindInvalidRequest}
	ErrInvalidTransition         = &Error{Kind: KindInvalidTransition}
	ErrCancellationWindowExpired = &Error{Kind: KindCancellationWindowExpired}
	ErrBookingNotFound           = &Error{Kind: KindBookingNotFound}
	ErrDuplicateBooking          = &Error{Kind: KindDuplicateBooking}
)

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewInvalidRequestError reports a malformed trip request or booking input.
func NewInvalidRequestError(message string) error {
	return &Error{Kind: KindInvalidRequest, Message: message}
}

// NewInvalidTransitionError reports a lifecycle rule violation.
func NewInvalidTransitionError(from, to string) error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewCancellationWindowExpiredError reports a cancellation requested inside the cutoff window.
func NewCancellationWindowExpiredError(departure time.Time, cutoff time.Duration) error {
	return &Error{
		Kind: KindCancellationWindowExpired,
		Message: fmt.Sprintf("cancellation must be requested at least %s before departure at %s",
			cutoff, departure.Format(time.RFC3339)),
	}
}

// NewBookingNotFoundError reports an unknown booking identifier.
func NewBookingNotFoundError(id string) error {
	return &Error{Kind: KindBookingNotFound, Message: fmt.Sprintf("booking %s not found", id)}
}

// NewDuplicateBookingError reports an identifier that already exists in the store.
func NewDuplicateBookingError(id string) error {
	return &Error{Kind: KindDuplicateBooking, Message: fmt.Sprintf("booking %s already exists", id)}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
