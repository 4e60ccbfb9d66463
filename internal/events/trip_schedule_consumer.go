package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/metrics"
)

// BookingCompleter completes a booking once its trip has run.
type BookingCompleter interface {
	CompleteTrip(ctx context.Context, bookingID uuid.UUID) error
}

// TripScheduleConsumer listens to the trip scheduler and completes finished trips.
type TripScheduleConsumer struct {
	consumer  *Consumer
	completer BookingCompleter
	logger    *zap.Logger
}

// NewTripScheduleConsumer creates a new TripScheduleConsumer.
func NewTripScheduleConsumer(
	brokers []string,
	groupID string,
	topic string,
	completer BookingCompleter,
	logger *zap.Logger,
) *TripScheduleConsumer {
	return &TripScheduleConsumer{
		consumer:  NewConsumer(brokers, groupID, topic, logger),
		completer: completer,
		logger:    logger,
	}
}

// Start begins consuming schedule events. This blocks until the context is cancelled.
func (c *TripScheduleConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *TripScheduleConsumer) Close() error {
	return c.consumer.Close()
}

func (c *TripScheduleConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from schedule topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		metrics.EventsConsumed.WithLabelValues("unknown", "malformed").Inc()
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case TripFinished:
		return c.handleTripFinished(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled schedule event type",
			zap.String("type", cloudEvent.Type),
		)
		metrics.EventsConsumed.WithLabelValues(cloudEvent.Type, "ignored").Inc()
		return nil
	}
}

func (c *TripScheduleConsumer) handleTripFinished(ctx context.Context, cloudEvent CloudEvent) error {
	var evt TripFinishedEvent
	if err := cloudEvent.ParseData(&evt); err != nil || evt.BookingID == uuid.Nil {
		c.logger.Error("failed to parse TripFinishedEvent data",
			zap.String("event_id", cloudEvent.ID),
			zap.Error(err),
		)
		metrics.EventsConsumed.WithLabelValues(cloudEvent.Type, "malformed").Inc()
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing trip finished event",
		zap.String("booking_id", evt.BookingID.String()),
		zap.Time("finished_at", evt.FinishedAt),
	)

	if err := c.completer.CompleteTrip(ctx, evt.BookingID); err != nil {
		var domainErr *domain.Error
		if errors.As(err, &domainErr) {
			// Replays, cancelled bookings and unknown ids will never succeed.
			c.logger.Warn("trip finished event rejected",
				zap.String("booking_id", evt.BookingID.String()),
				zap.String("kind", string(domainErr.Kind)),
				zap.Error(err),
			)
			metrics.EventsConsumed.WithLabelValues(cloudEvent.Type, "rejected").Inc()
			return nil
		}
		c.logger.Error("failed to complete booking after trip finished",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		metrics.EventsConsumed.WithLabelValues(cloudEvent.Type, "error").Inc()
		return err
	}

	c.logger.Info("booking completed after trip finished",
		zap.String("booking_id", evt.BookingID.String()),
	)
	metrics.EventsConsumed.WithLabelValues(cloudEvent.Type, "ok").Inc()
	return nil
}
