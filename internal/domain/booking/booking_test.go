package booking

import (
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain/trip"
)

var testNow = time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

func testRequest(daysAhead int, hour, minute int) trip.TripRequest {
	return trip.TripRequest{
		Origin:      "New York, NY, USA",
		Destination: "Boston, MA, USA",
		TravelDate:  civil.DateOf(testNow).AddDays(daysAhead),
		TravelTime:  trip.TimeOfDay{Hour: hour, Minute: minute},
		Passengers:  2,
	}
}

func testQuote() trip.Quote {
	return trip.Price(trip.DefaultPricingTable(), 306_000, 2, trip.DistanceFromLookup)
}

func newTestPending(t *testing.T, userID string, req trip.TripRequest) *Booking {
	t.Helper()
	b, err := NewPendingBooking(userID, req, testQuote())
	require.NoError(t, err)
	return b
}

func TestNewPendingBooking(t *testing.T) {
	b := newTestPending(t, "user-1", testRequest(1, 9, 0))

	assert.Equal(t, uuid.Nil, b.ID())
	assert.Equal(t, "user-1", b.UserID())
	assert.Equal(t, StatusPending, b.Status())
	assert.True(t, b.CreatedAt().IsZero())
	assert.True(t, b.IsOwnedBy("user-1"))
	assert.False(t, b.IsOwnedBy("user-2"))
	assert.False(t, b.IsOwnedBy(""))
}

func TestNewPendingBooking_Validation(t *testing.T) {
	_, err := NewPendingBooking(" ", testRequest(1, 9, 0), testQuote())
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	req := testRequest(1, 9, 0)
	req.Passengers = 0
	_, err = NewPendingBooking("user-1", req, testQuote())
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	q := testQuote()
	q.TotalCents++
	_, err = NewPendingBooking("user-1", testRequest(1, 9, 0), q)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestBooking_WithStatusIsCopy(t *testing.T) {
	pending := newTestPending(t, "user-1", testRequest(1, 9, 0))
	confirmed, err := pending.confirm(uuid.New(), testNow)
	require.NoError(t, err)

	cancelled, err := confirmed.WithStatus(StatusCancelled)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, pending.Status())
	assert.Equal(t, StatusConfirmed, confirmed.Status())
	assert.Equal(t, StatusCancelled, cancelled.Status())
	assert.Equal(t, confirmed.ID(), cancelled.ID())
	assert.Equal(t, confirmed.Quote(), cancelled.Quote())
	assert.Equal(t, confirmed.Request(), cancelled.Request())

	_, err = cancelled.WithStatus(StatusCompleted)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestBooking_ConfirmRequiresID(t *testing.T) {
	pending := newTestPending(t, "user-1", testRequest(1, 9, 0))
	_, err := pending.confirm(uuid.Nil, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestBooking_JSONRoundTrip(t *testing.T) {
	pending := newTestPending(t, "user-1", testRequest(3, 14, 45))
	confirmed, err := pending.confirm(uuid.New(), testNow.Add(123456*time.Microsecond))
	require.NoError(t, err)

	data, err := json.Marshal(confirmed)
	require.NoError(t, err)

	var decoded Booking
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, confirmed.ToRecord().ID, decoded.ID())
	assert.Equal(t, confirmed.Request(), decoded.Request())
	assert.Equal(t, confirmed.Quote(), decoded.Quote())
	assert.Equal(t, confirmed.Status(), decoded.Status())
	assert.True(t, confirmed.CreatedAt().Equal(decoded.CreatedAt()))

	again, err := json.Marshal(&decoded)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestFromRecord_RejectsInvalid(t *testing.T) {
	pending := newTestPending(t, "user-1", testRequest(1, 9, 0))
	confirmed, err := pending.confirm(uuid.New(), testNow)
	require.NoError(t, err)
	valid := confirmed.ToRecord()

	tests := []struct {
		name   string
		mutate func(*Record)
	}{
		{"no user", func(r *Record) { r.UserID = "" }},
		{"unknown status", func(r *Record) { r.Status = "archived" }},
		{"no id", func(r *Record) { r.ID = uuid.Nil }},
		{"no created_at", func(r *Record) { r.CreatedAt = time.Time{} }},
		{"bad passengers", func(r *Record) { r.TripRequest.Passengers = 12 }},
		{"inconsistent quote", func(r *Record) { r.Quote.TaxCents = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			_, err := FromRecord(r)
			assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		})
	}

	_, err = FromRecord(pending.ToRecord())
	assert.NoError(t, err, "pending records may omit id and creation time")
}

func TestFromRecord_AcceptsPastTravelDate(t *testing.T) {
	pending := newTestPending(t, "user-1", testRequest(-30, 9, 0))
	r := pending.ToRecord()
	r.ID = uuid.New()
	r.Status = StatusCompleted
	r.CreatedAt = testNow.AddDate(0, -2, 0)

	b, err := FromRecord(r)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, b.Status())
}

func TestSortNewestFirst(t *testing.T) {
	older := ReconstructBooking(uuid.MustParse("00000000-0000-0000-0000-000000000009"), "u",
		testRequest(1, 9, 0), testQuote(), StatusConfirmed, testNow)
	tieLow := ReconstructBooking(uuid.MustParse("00000000-0000-0000-0000-000000000001"), "u",
		testRequest(1, 9, 0), testQuote(), StatusConfirmed, testNow.Add(time.Minute))
	tieHigh := ReconstructBooking(uuid.MustParse("00000000-0000-0000-0000-000000000002"), "u",
		testRequest(1, 9, 0), testQuote(), StatusConfirmed, testNow.Add(time.Minute))

	list := []*Booking{older, tieLow, tieHigh}
	SortNewestFirst(list)

	assert.Equal(t, []*Booking{tieHigh, tieLow, older}, list)
}
