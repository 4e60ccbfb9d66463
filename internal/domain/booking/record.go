package booking

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain/trip"
)

// Record is the persisted form of a Booking.
type Record struct {
	ID          uuid.UUID        `json:"id"`
	UserID      string           `json:"user_id"`
	TripRequest trip.TripRequest `json:"trip_request"`
	Quote       trip.Quote       `json:"quote"`
	Status      BookingStatus    `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ToRecord converts the booking to its persisted form.
func (b *Booking) ToRecord() Record {
	return Record{
		ID:          b.id,
		UserID:      b.userID,
		TripRequest: b.request,
		Quote:       b.quote,
		Status:      b.status,
		CreatedAt:   b.createdAt,
	}
}

// FromRecord validates a persisted record and rebuilds the booking.
// Only pending records may lack an identifier and creation time.
func FromRecord(r Record) (*Booking, error) {
	if strings.TrimSpace(r.UserID) == "" {
		return nil, domain.NewInvalidRequestError("record has no user ID")
	}
	if !r.Status.IsValid() {
		return nil, domain.NewInvalidRequestError(fmt.Sprintf("record has invalid status %q", r.Status))
	}
	if r.Status != StatusPending {
		if r.ID == uuid.Nil {
			return nil, domain.NewInvalidRequestError("record has no booking ID")
		}
		if r.CreatedAt.IsZero() {
			return nil, domain.NewInvalidRequestError(fmt.Sprintf("record %s has no creation time", r.ID))
		}
	}
	if err := r.TripRequest.ValidateShape(); err != nil {
		return nil, fmt.Errorf("record %s: %w", r.ID, err)
	}
	if err := r.Quote.Validate(); err != nil {
		return nil, fmt.Errorf("record %s: %w", r.ID, err)
	}
	return ReconstructBooking(r.ID, r.UserID, r.TripRequest, r.Quote, r.Status, r.CreatedAt), nil
}

// MarshalJSON encodes the booking as a Record.
func (b *Booking) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.ToRecord())
}

// UnmarshalJSON decodes and validates a Record.
func (b *Booking) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	decoded, err := FromRecord(r)
	if err != nil {
		return err
	}
	*b = *decoded
	return nil
}
