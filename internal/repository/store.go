package repository

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain"
	bookingDomain "github.com/Kilat-Pet-Delivery/service-trip/internal/domain/booking"
)

// checkCreatable validates a booking handed to Store.Create.
func checkCreatable(userID string, bk *bookingDomain.Booking) error {
	if bk == nil {
		return domain.NewInvalidRequestError("booking is required")
	}
	if bk.ID() == uuid.Nil {
		return domain.NewInvalidRequestError("booking has no ID")
	}
	if bk.Status() == bookingDomain.StatusPending {
		return domain.NewInvalidRequestError("pending bookings are not stored")
	}
	if !bk.IsOwnedBy(userID) {
		return domain.NewInvalidRequestError(fmt.Sprintf("booking %s does not belong to user %q", bk.ID(), userID))
	}
	return nil
}

func emptyCounts() map[bookingDomain.BookingStatus]int64 {
	counts := make(map[bookingDomain.BookingStatus]int64)
	for _, status := range bookingDomain.AllStatuses() {
		if status != bookingDomain.StatusPending {
			counts[status] = 0
		}
	}
	return counts
}
