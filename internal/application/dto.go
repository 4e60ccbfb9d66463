package application

import (
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/Kilat-Pet-Delivery/service-trip/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain/trip"
)

// CreateQuoteRequest holds the trip form as submitted at the summary step.
type CreateQuoteRequest struct {
	Origin           string         `json:"origin" binding:"required"`
	Destination      string         `json:"destination" binding:"required"`
	OriginPoint      *trip.GeoPoint `json:"origin_point"`
	DestinationPoint *trip.GeoPoint `json:"destination_point"`
	TravelDate       string         `json:"travel_date" binding:"required"`
	TravelTime       string         `json:"travel_time" binding:"required"`
	Passengers       int            `json:"passengers" binding:"required"`
}

// ConfirmBookingRequest confirms the pending booking held under PendingToken.
type ConfirmBookingRequest struct {
	PendingToken string `json:"pending_token" binding:"required"`
}

// PriceDisplay holds the quote amounts formatted for display.
type PriceDisplay struct {
	BaseFare   string `json:"base_fare"`
	ServiceFee string `json:"service_fee"`
	Tax        string `json:"tax"`
	Total      string `json:"total"`
}

// QuoteView is a quote plus its display strings.
type QuoteView struct {
	trip.Quote
	Display PriceDisplay `json:"display"`
}

// QuoteDTO is returned by the summary step.
type QuoteDTO struct {
	PendingToken string           `json:"pending_token"`
	ExpiresAt    time.Time        `json:"expires_at"`
	Trip         trip.TripRequest `json:"trip"`
	Quote        QuoteView        `json:"quote"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID               uuid.UUID        `json:"id"`
	UserID           string           `json:"user_id"`
	Status           string           `json:"status"`
	Trip             trip.TripRequest `json:"trip"`
	Quote            QuoteView        `json:"quote"`
	DepartureAt      time.Time        `json:"departure_at"`
	Cancellable      bool             `json:"cancellable"`
	CancellableUntil *time.Time       `json:"cancellable_until,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// PaginatedResult is one page of a list.
type PaginatedResult[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// paginate returns the page of items selected by page and limit. A page past
// the end yields no items.
func paginate[T any](items []T, page, limit int) PaginatedResult[T] {
	total := len(items)
	if limit < 1 {
		limit = 1
	}
	start := total
	if page >= 1 && page-1 <= total/limit {
		start = (page - 1) * limit
	}
	if start > total {
		start = total
	}
	end := start + min(limit, total-start)
	return PaginatedResult[T]{
		Items: append([]T{}, items[start:end]...),
		Total: int64(total),
		Page:  page,
		Limit: limit,
	}
}

func toQuoteView(q trip.Quote) QuoteView {
	return QuoteView{
		Quote: q,
		Display: PriceDisplay{
			BaseFare:   trip.FormatCents(q.BaseFareCents),
			ServiceFee: trip.FormatCents(q.ServiceFeeCents),
			Tax:        trip.FormatCents(q.TaxCents),
			Total:      trip.FormatCents(q.TotalCents),
		},
	}
}

func (s *BookingService) toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	dto := BookingDTO{
		ID:          bk.ID(),
		UserID:      bk.UserID(),
		Status:      string(bk.Status()),
		Trip:        bk.Request(),
		Quote:       toQuoteView(bk.Quote()),
		DepartureAt: bk.DepartureAt(s.lifecycle.Location()),
		CreatedAt:   bk.CreatedAt(),
	}
	if bk.Status().CanBeCancelled() {
		deadline := s.lifecycle.CancellationDeadline(bk)
		dto.CancellableUntil = &deadline
		dto.Cancellable = s.lifecycle.CheckCancellation(bk, s.now()) == nil
	}
	return dto
}
