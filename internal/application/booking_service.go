package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain"
	bookingDomain "github.com/Kilat-Pet-Delivery/service-trip/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain/trip"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/events"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/session"
)

const eventSource = "service-trip"

// EventPublisher publishes booking events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, ce events.CloudEvent) error
}

// Options tunes the booking service.
type Options struct {
	PendingTTL   time.Duration
	ConfirmDelay time.Duration
	BookingTopic string
	Clock        trip.Clock
}

// BookingService is the application service orchestrating the quote and booking use cases.
type BookingService struct {
	engine    *trip.Engine
	lifecycle *bookingDomain.Lifecycle
	stats     bookingDomain.StatsReader
	pending   bookingDomain.PendingStore
	publisher EventPublisher
	opts      Options
	now       trip.Clock
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	engine *trip.Engine,
	lifecycle *bookingDomain.Lifecycle,
	stats bookingDomain.StatsReader,
	pending bookingDomain.PendingStore,
	publisher EventPublisher,
	opts Options,
	logger *zap.Logger,
) *BookingService {
	if opts.PendingTTL <= 0 {
		opts.PendingTTL = 30 * time.Minute
	}
	if opts.BookingTopic == "" {
		opts.BookingTopic = events.TopicBookingEvents
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &BookingService{
		engine:    engine,
		lifecycle: lifecycle,
		stats:     stats,
		pending:   pending,
		publisher: publisher,
		opts:      opts,
		now:       now,
		logger:    logger,
	}
}

// QuoteTrip prices the trip and holds it as a pending booking until it is confirmed.
func (s *BookingService) QuoteTrip(ctx context.Context, sess session.Session, req CreateQuoteRequest) (*QuoteDTO, error) {
	tripReq, err := toTripRequest(req)
	if err != nil {
		return nil, s.fail("quote", err)
	}

	quote, err := s.engine.Quote(ctx, tripReq)
	if err != nil {
		return nil, s.fail("quote", err)
	}

	pending, err := bookingDomain.NewPendingBooking(sess.UserID, tripReq, quote)
	if err != nil {
		return nil, s.fail("quote", err)
	}

	token := uuid.NewString()
	if err := s.pending.Put(ctx, token, pending, s.opts.PendingTTL); err != nil {
		return nil, s.fail("quote", fmt.Errorf("failed to hold pending booking: %w", err))
	}

	metrics.QuotesIssued.WithLabelValues(string(quote.DistanceSource)).Inc()
	metrics.QuotedTotalCents.Observe(float64(quote.TotalCents))

	return &QuoteDTO{
		PendingToken: token,
		ExpiresAt:    s.now().UTC().Add(s.opts.PendingTTL),
		Trip:         tripReq,
		Quote:        toQuoteView(quote),
	}, nil
}

// ConfirmBooking confirms the pending booking held under the request's token.
// The quote persisted is exactly the one shown at the summary step.
func (s *BookingService) ConfirmBooking(ctx context.Context, sess session.Session, req ConfirmBookingRequest) (*BookingDTO, error) {
	pending, err := s.pending.Get(ctx, sess.UserID, req.PendingToken)
	if err != nil {
		return nil, s.fail("confirm", err)
	}

	if err := s.wait(ctx, s.opts.ConfirmDelay); err != nil {
		return nil, err
	}

	bk, err := s.lifecycle.Confirm(ctx, sess, pending, req.PendingToken)
	if err != nil {
		return nil, s.fail("confirm", err)
	}

	if err := s.pending.Delete(ctx, sess.UserID, req.PendingToken); err != nil {
		s.logger.Warn("failed to release pending booking",
			zap.String("booking_id", bk.ID().String()),
			zap.Error(err),
		)
	}

	s.logger.Info("booking confirmed",
		zap.String("booking_id", bk.ID().String()),
		zap.String("user_id", bk.UserID()),
		zap.Int64("total_cents", bk.Quote().TotalCents),
	)
	metrics.BookingTransitions.WithLabelValues(string(bk.Status())).Inc()

	tr := bk.Request()
	s.publishEvent(ctx, events.BookingConfirmed, bk, events.BookingConfirmedEvent{
		BookingID:   bk.ID(),
		UserID:      bk.UserID(),
		Origin:      tr.Origin,
		Destination: tr.Destination,
		TravelDate:  tr.TravelDate.String(),
		TravelTime:  tr.TravelTime.String(),
		Passengers:  tr.Passengers,
		TotalCents:  bk.Quote().TotalCents,
		Currency:    bk.Quote().Currency,
		OccurredAt:  s.now().UTC(),
	})

	result := s.toBookingDTO(bk)
	return &result, nil
}

// ListBookings returns the session user's bookings, newest first.
func (s *BookingService) ListBookings(ctx context.Context, sess session.Session, page, limit int) (*PaginatedResult[BookingDTO], error) {
	bookings, err := s.lifecycle.List(ctx, sess)
	if err != nil {
		return nil, s.fail("list", err)
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = s.toBookingDTO(bk)
	}

	result := paginate(dtos, page, limit)
	return &result, nil
}

// GetBooking retrieves a single booking owned by the session user.
func (s *BookingService) GetBooking(ctx context.Context, sess session.Session, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.lifecycle.Get(ctx, sess, bookingID)
	if err != nil {
		return nil, s.fail("get", err)
	}
	result := s.toBookingDTO(bk)
	return &result, nil
}

// CancelBooking cancels a confirmed booking before the cancellation cutoff.
func (s *BookingService) CancelBooking(ctx context.Context, sess session.Session, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.lifecycle.Cancel(ctx, sess, bookingID)
	if err != nil {
		return nil, s.fail("cancel", err)
	}

	s.logger.Info("booking cancelled",
		zap.String("booking_id", bk.ID().String()),
		zap.String("user_id", bk.UserID()),
	)
	metrics.BookingTransitions.WithLabelValues(string(bk.Status())).Inc()

	s.publishEvent(ctx, events.BookingCancelled, bk, events.BookingCancelledEvent{
		BookingID:  bk.ID(),
		UserID:     bk.UserID(),
		OccurredAt: s.now().UTC(),
	})

	result := s.toBookingDTO(bk)
	return &result, nil
}

// CompleteBooking marks a confirmed booking as completed once the trip has departed.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.lifecycle.Complete(ctx, bookingID)
	if err != nil {
		return nil, s.fail("complete", err)
	}

	s.logger.Info("booking completed", zap.String("booking_id", bk.ID().String()))
	metrics.BookingTransitions.WithLabelValues(string(bk.Status())).Inc()

	s.publishEvent(ctx, events.BookingCompleted, bk, events.BookingCompletedEvent{
		BookingID:  bk.ID(),
		UserID:     bk.UserID(),
		TotalCents: bk.Quote().TotalCents,
		Currency:   bk.Quote().Currency,
		OccurredAt: s.now().UTC(),
	})

	result := s.toBookingDTO(bk)
	return &result, nil
}

// CompleteTrip implements events.BookingCompleter.
func (s *BookingService) CompleteTrip(ctx context.Context, bookingID uuid.UUID) error {
	_, err := s.CompleteBooking(ctx, bookingID)
	return err
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.stats.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	byStatus := make(map[string]int64, len(counts))
	for status, c := range counts {
		byStatus[string(status)] = c
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      byStatus,
	}, nil
}

// --- Helpers ---

func toTripRequest(req CreateQuoteRequest) (trip.TripRequest, error) {
	date, err := civil.ParseDate(req.TravelDate)
	if err != nil {
		return trip.TripRequest{}, domain.NewInvalidRequestError(fmt.Sprintf("invalid travel date %q, expected YYYY-MM-DD", req.TravelDate))
	}
	tod, err := trip.ParseTimeOfDay(req.TravelTime)
	if err != nil {
		return trip.TripRequest{}, err
	}
	return trip.TripRequest{
		Origin:           req.Origin,
		Destination:      req.Destination,
		OriginPoint:      req.OriginPoint,
		DestinationPoint: req.DestinationPoint,
		TravelDate:       date,
		TravelTime:       tod,
		Passengers:       req.Passengers,
	}, nil
}

// wait blocks for d or until ctx is done.
func (s *BookingService) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// fail records err against operation and returns it unchanged.
func (s *BookingService) fail(operation string, err error) error {
	kind := string(domain.KindOf(err))
	if kind == "" {
		kind = "internal"
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			kind = "canceled"
		}
	}
	metrics.BookingErrors.WithLabelValues(operation, kind).Inc()
	return err
}

func (s *BookingService) publishEvent(ctx context.Context, eventType string, bk *bookingDomain.Booking, data interface{}) {
	cloudEvent, err := events.NewCloudEvent(eventSource, eventType, bk.ID().String(), data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		metrics.EventsPublished.WithLabelValues(eventType, "error").Inc()
		return
	}

	if err := s.publisher.PublishEvent(ctx, s.opts.BookingTopic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", s.opts.BookingTopic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		metrics.EventsPublished.WithLabelValues(eventType, "error").Inc()
		return
	}
	metrics.EventsPublished.WithLabelValues(eventType, "ok").Inc()
}
