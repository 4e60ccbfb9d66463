package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines the persistence contract for confirmed bookings.
// It is the single writer of booking status.
type Store interface {
	// Create persists a new booking for userID. It returns DuplicateBooking if the id exists.
	Create(ctx context.Context, userID string, b *Booking) (*Booking, error)

	// ListForUser returns the user's bookings newest first. It returns an empty slice when there are none.
	ListForUser(ctx context.Context, userID string) ([]*Booking, error)

	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// UpdateStatus moves a booking to status if the status machine allows it.
	UpdateStatus(ctx context.Context, id uuid.UUID, status BookingStatus) (*Booking, error)
}

// StatsReader reports aggregate booking counts (admin).
type StatsReader interface {
	// CountByStatus returns booking counts grouped by status.
	CountByStatus(ctx context.Context) (map[BookingStatus]int64, error)
}

// PendingStore holds pending bookings between the summary step and confirmation.
type PendingStore interface {
	// Put stores a pending booking under token for ttl.
	Put(ctx context.Context, token string, b *Booking, ttl time.Duration) error

	// Get returns the user's pending booking for token, or InvalidRequest if there is none.
	Get(ctx context.Context, userID, token string) (*Booking, error)

	// Delete removes the pending booking. Deleting a missing token is not an error.
	Delete(ctx context.Context, userID, token string) error
}
