package events

import (
	"time"

	"github.com/google/uuid"
)

// Default topics.
const (
	TopicBookingEvents      = "booking.events"
	TopicTripScheduleEvents = "trip.schedule.events"
)

// Event types.
const (
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
	BookingCompleted = "booking.completed"

	TripFinished = "trip.schedule.trip_finished"
)

// BookingConfirmedEvent is published when a pending booking is confirmed.
type BookingConfirmedEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	UserID      string    `json:"user_id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	TravelDate  string    `json:"travel_date"`
	TravelTime  string    `json:"travel_time"`
	Passengers  int       `json:"passengers"`
	TotalCents  int64     `json:"total_cents"`
	Currency    string    `json:"currency"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published when a traveller cancels a booking.
type BookingCancelledEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingCompletedEvent is published when a trip has taken place.
type BookingCompletedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	UserID     string    `json:"user_id"`
	TotalCents int64     `json:"total_cents"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TripFinishedEvent is emitted by the trip scheduler once a trip has run.
type TripFinishedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	FinishedAt time.Time `json:"finished_at"`
}
