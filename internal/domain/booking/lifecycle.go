package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain/trip"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/session"
)

// confirmNamespace scopes booking ids derived from idempotency keys.
var confirmNamespace = uuid.MustParse("5b0c6f0e-8d0a-4c55-9f43-3f5f1b7f2a61")

// Lifecycle enforces the booking state machine on top of a Store.
// It holds no mutable state.
type Lifecycle struct {
	store  Store
	policy CancellationPolicy
	loc    *time.Location
	now    trip.Clock
}

// LifecycleOption configures a Lifecycle.
type LifecycleOption func(*Lifecycle)

// WithLifecycleClock sets the clock used for confirmation times, cancellation and completion checks.
func WithLifecycleClock(c trip.Clock) LifecycleOption {
	return func(l *Lifecycle) { l.now = c }
}

// WithTimeZone sets the zone departure times are interpreted in.
func WithTimeZone(loc *time.Location) LifecycleOption {
	return func(l *Lifecycle) { l.loc = loc }
}

// WithCancellationPolicy overrides the default two-hour cutoff.
func WithCancellationPolicy(p CancellationPolicy) LifecycleOption {
	return func(l *Lifecycle) { l.policy = p }
}

// NewLifecycle creates a new Lifecycle.
func NewLifecycle(store Store, opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{
		store:  store,
		policy: DefaultCancellationPolicy(),
		loc:    time.UTC,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Policy returns the cancellation policy in force.
func (l *Lifecycle) Policy() CancellationPolicy { return l.policy }

// Location returns the zone departure times are interpreted in.
func (l *Lifecycle) Location() *time.Location { return l.loc }

// Confirm turns a pending booking into a persisted confirmed booking.
// A non-empty idempotencyKey derives the booking id, so replaying it yields DuplicateBooking.
func (l *Lifecycle) Confirm(ctx context.Context, sess session.Session, pending *Booking, idempotencyKey string) (*Booking, error) {
	if pending == nil {
		return nil, domain.NewInvalidRequestError("no pending booking")
	}
	if !sess.IsAuthenticated() {
		return nil, domain.NewInvalidRequestError("a signed-in user is required")
	}
	if pending.Status() != StatusPending {
		return nil, domain.NewInvalidTransitionError(string(pending.Status()), string(StatusConfirmed))
	}
	if !pending.IsOwnedBy(sess.UserID) {
		return nil, domain.NewBookingNotFoundError("pending")
	}

	now := l.now()
	if err := pending.Request().Validate(now, l.loc); err != nil {
		return nil, err
	}
	if err := pending.Quote().Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	if idempotencyKey != "" {
		id = uuid.NewSHA1(confirmNamespace, []byte(sess.UserID+":"+idempotencyKey))
	}
	confirmed, err := pending.confirm(id, now.UTC().Truncate(time.Microsecond))
	if err != nil {
		return nil, err
	}

	return l.store.Create(ctx, sess.UserID, confirmed)
}

// CheckCancellation reports whether b may be cancelled at now.
func (l *Lifecycle) CheckCancellation(b *Booking, now time.Time) error {
	if !b.Status().CanBeCancelled() {
		return domain.NewInvalidTransitionError(string(b.Status()), string(StatusCancelled))
	}
	return l.policy.Check(b, now, l.loc)
}

// CancellationDeadline returns the last instant at which b may be cancelled.
func (l *Lifecycle) CancellationDeadline(b *Booking) time.Time {
	return l.policy.Deadline(b, l.loc)
}

// Get returns the booking if sess owns it.
func (l *Lifecycle) Get(ctx context.Context, sess session.Session, id uuid.UUID) (*Booking, error) {
	b, err := l.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.IsOwnedBy(sess.UserID) {
		return nil, domain.NewBookingNotFoundError(id.String())
	}
	return b, nil
}

// List returns the bookings owned by sess, newest first.
func (l *Lifecycle) List(ctx context.Context, sess session.Session) ([]*Booking, error) {
	if !sess.IsAuthenticated() {
		return nil, domain.NewInvalidRequestError("a signed-in user is required")
	}
	return l.store.ListForUser(ctx, sess.UserID)
}

// Cancel cancels a confirmed booking owned by sess, provided the cutoff has not passed.
func (l *Lifecycle) Cancel(ctx context.Context, sess session.Session, id uuid.UUID) (*Booking, error) {
	b, err := l.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if err := l.CheckCancellation(b, l.now()); err != nil {
		return nil, err
	}
	return l.store.UpdateStatus(ctx, id, StatusCancelled)
}

// Complete marks a confirmed booking as completed once its departure time has been reached.
func (l *Lifecycle) Complete(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, err := l.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.Status().CanTransitionTo(StatusCompleted) {
		return nil, domain.NewInvalidTransitionError(string(b.Status()), string(StatusCompleted))
	}
	if l.now().Before(b.DepartureAt(l.loc)) {
		return nil, &domain.Error{
			Kind:    domain.KindInvalidTransition,
			Message: "trip has not departed yet",
		}
	}
	return l.store.UpdateStatus(ctx, id, StatusCompleted)
}
