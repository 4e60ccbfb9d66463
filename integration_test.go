//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kilat-Pet-Delivery/service-trip/internal/application"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/events"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/session"
)

func civilDate(t time.Time) civil.Date { return civil.DateOf(t) }

// TestTripFinished_CompletesBooking verifies that a trip_finished event on the
// schedule topic completes the booking and emits booking.completed.
func TestTripFinished_CompletesBooking(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupTripStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	bk := seedDepartedBooking(t, stack.Repo, "u-integration")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	publishTestEvent(t, infra.KafkaBrokers, events.TopicTripScheduleEvents,
		"service-scheduler", events.TripFinished, bk.ID().String(),
		events.TripFinishedEvent{BookingID: bk.ID(), FinishedAt: time.Now().UTC()})

	model := waitForBookingStatus(t, infra.DB, bk.ID(), "completed", 15*time.Second)
	assert.Equal(t, int64(2), model.Version)

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents,
		events.BookingCompleted, 15*time.Second)

	var completed events.BookingCompletedEvent
	require.NoError(t, ce.ParseData(&completed))
	assert.Equal(t, bk.ID(), completed.BookingID)
	assert.Equal(t, "u-integration", completed.UserID)
	assert.Equal(t, bk.Quote().TotalCents, completed.TotalCents)
	assert.Equal(t, "USD", completed.Currency)
}

// TestQuoteAndConfirm_PublishesConfirmed runs the summary and confirm steps
// against PostgreSQL and checks the emitted event.
func TestQuoteAndConfirm_PublishesConfirmed(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupTripStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ctx := context.Background()
	sess := session.Session{UserID: uuid.NewString(), Email: "carol@example.com", Name: "carol", Role: session.RoleTraveller}

	quote, err := stack.Service.QuoteTrip(ctx, sess, application.CreateQuoteRequest{
		Origin:      "Chicago, IL, USA",
		Destination: "Indianapolis, IN, USA",
		TravelDate:  civilDate(time.Now().AddDate(0, 0, 3)).String(),
		TravelTime:  "08:15",
		Passengers:  3,
	})
	require.NoError(t, err)

	bk, err := stack.Service.ConfirmBooking(ctx, sess, application.ConfirmBookingRequest{PendingToken: quote.PendingToken})
	require.NoError(t, err)
	assert.Equal(t, quote.Quote, bk.Quote)

	model := waitForBookingStatus(t, infra.DB, bk.ID, "confirmed", 5*time.Second)
	assert.Equal(t, quote.Quote.TotalCents, model.TotalCents)

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents,
		events.BookingConfirmed, 15*time.Second)
	var confirmed events.BookingConfirmedEvent
	require.NoError(t, ce.ParseData(&confirmed))
	assert.Equal(t, bk.ID, confirmed.BookingID)
	assert.Equal(t, 3, confirmed.Passengers)

	// The pending quote was consumed by the first confirmation.
	_, err = stack.Service.ConfirmBooking(ctx, sess, application.ConfirmBookingRequest{PendingToken: quote.PendingToken})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}
