package booking

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain/trip"
)

// Booking is the aggregate root for the booking domain.
// A Booking value is never mutated; status changes produce a new value.
type Booking struct {
	id        uuid.UUID
	userID    string
	request   trip.TripRequest
	quote     trip.Quote
	status    BookingStatus
	createdAt time.Time
}

// NewPendingBooking creates the booking held between the summary step and confirmation.
// It has no identifier or creation time until it is confirmed.
func NewPendingBooking(userID string, req trip.TripRequest, quote trip.Quote) (*Booking, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.NewInvalidRequestError("user ID is required")
	}
	if err := req.ValidateShape(); err != nil {
		return nil, err
	}
	if err := quote.Validate(); err != nil {
		return nil, err
	}

	return &Booking{
		userID:  userID,
		request: req,
		quote:   quote,
		status:  StatusPending,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	userID string,
	req trip.TripRequest,
	quote trip.Quote,
	status BookingStatus,
	createdAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		userID:    userID,
		request:   req,
		quote:     quote,
		status:    status,
		createdAt: createdAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier, or uuid.Nil while pending.
func (b *Booking) ID() uuid.UUID { return b.id }

// UserID returns the owning user's identifier.
func (b *Booking) UserID() string { return b.userID }

// Request returns the trip request the booking was quoted for.
func (b *Booking) Request() trip.TripRequest { return b.request }

// Quote returns the quote accepted at confirmation.
func (b *Booking) Quote() trip.Quote { return b.quote }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// CreatedAt returns the confirmation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// DepartureAt returns the scheduled departure instant in loc.
func (b *Booking) DepartureAt(loc *time.Location) time.Time {
	return b.request.DepartureAt(loc)
}

// IsOwnedBy returns true if userID owns the booking.
func (b *Booking) IsOwnedBy(userID string) bool {
	return userID != "" && b.userID == userID
}

// --- Behavior ---

// WithStatus returns a copy of the booking in the target status.
func (b *Booking) WithStatus(target BookingStatus) (*Booking, error) {
	if !b.status.CanTransitionTo(target) {
		return nil, domain.NewInvalidTransitionError(string(b.status), string(target))
	}
	next := *b
	next.status = target
	return &next, nil
}

// confirm returns the confirmed copy of a pending booking.
func (b *Booking) confirm(id uuid.UUID, createdAt time.Time) (*Booking, error) {
	if id == uuid.Nil {
		return nil, domain.NewInvalidRequestError("booking ID is required")
	}
	next, err := b.WithStatus(StatusConfirmed)
	if err != nil {
		return nil, err
	}
	next.id = id
	next.createdAt = createdAt
	return next, nil
}

func (b *Booking) String() string {
	return fmt.Sprintf("booking %s (%s, user %s)", b.id, b.status, b.userID)
}

// SortNewestFirst orders bookings by creation time descending, ties broken by identifier descending.
func SortNewestFirst(bookings []*Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		a, b := bookings[i], bookings[j]
		if !a.createdAt.Equal(b.createdAt) {
			return a.createdAt.After(b.createdAt)
		}
		return bytes.Compare(a.id[:], b.id[:]) > 0
	})
}
