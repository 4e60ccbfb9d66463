package repository

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	bookingDomain "github.com/Kilat-Pet-Delivery/service-trip/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain/trip"
)

var testNow = time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

func testTripRequest() trip.TripRequest {
	return trip.TripRequest{
		Origin:      "Chicago, IL, USA",
		Destination: "Indianapolis, IN, USA",
		TravelDate:  civil.DateOf(testNow).AddDays(2),
		TravelTime:  trip.TimeOfDay{Hour: 8, Minute: 15},
		Passengers:  3,
	}
}

func testPending(t *testing.T, userID string) *bookingDomain.Booking {
	t.Helper()
	req := testTripRequest()
	quote := trip.Price(trip.DefaultPricingTable(), 265_000, req.Passengers, trip.DistanceFromLookup)
	b, err := bookingDomain.NewPendingBooking(userID, req, quote)
	require.NoError(t, err)
	return b
}

// confirmedBooking builds a confirmed booking created offset after testNow.
func confirmedBooking(t *testing.T, userID string, offset time.Duration) *bookingDomain.Booking {
	t.Helper()
	p := testPending(t, userID)
	return bookingDomain.ReconstructBooking(uuid.New(), userID, p.Request(), p.Quote(),
		bookingDomain.StatusConfirmed, testNow.Add(offset))
}
