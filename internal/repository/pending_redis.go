package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	bookingDomain "github.com/Kilat-Pet-Delivery/service-trip/internal/domain/booking"
)

// RedisPendingStore keeps pending bookings in Redis with a TTL, so any replica can confirm them.
type RedisPendingStore struct {
	client redis.UniversalClient
}

// NewRedisPendingStore creates a new RedisPendingStore.
func NewRedisPendingStore(client redis.UniversalClient) *RedisPendingStore {
	return &RedisPendingStore{client: client}
}

// Put stores a pending booking under token for ttl.
func (s *RedisPendingStore) Put(ctx context.Context, token string, b *bookingDomain.Booking, ttl time.Duration) error {
	if err := checkPending(token, b); err != nil {
		return err
	}
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal pending booking: %w", err)
	}
	if err := s.client.Set(ctx, pendingKey(b.UserID(), token), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store pending booking: %w", err)
	}
	return nil
}

// Get returns the user's pending booking for token.
func (s *RedisPendingStore) Get(ctx context.Context, userID, token string) (*bookingDomain.Booking, error) {
	data, err := s.client.Get(ctx, pendingKey(userID, token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errPendingNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pending booking: %w", err)
	}

	var b bookingDomain.Booking
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode pending booking: %w", err)
	}
	if !b.IsOwnedBy(userID) || b.Status() != bookingDomain.StatusPending {
		return nil, errPendingNotFound()
	}
	return &b, nil
}

// Delete removes the pending booking.
func (s *RedisPendingStore) Delete(ctx context.Context, userID, token string) error {
	if err := s.client.Del(ctx, pendingKey(userID, token)).Err(); err != nil {
		return fmt.Errorf("failed to delete pending booking: %w", err)
	}
	return nil
}
