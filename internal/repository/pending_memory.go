package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain"
	bookingDomain "github.com/Kilat-Pet-Delivery/service-trip/internal/domain/booking"
)

type pendingEntry struct {
	booking   *bookingDomain.Booking
	expiresAt time.Time
}

// MemoryPendingStore is an in-process booking.PendingStore. Expired entries are
// dropped lazily on access.
type MemoryPendingStore struct {
	mu      sync.Mutex
	entries map[string]pendingEntry
	now     func() time.Time
}

// NewMemoryPendingStore creates a new MemoryPendingStore.
func NewMemoryPendingStore(now func() time.Time) *MemoryPendingStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryPendingStore{
		entries: make(map[string]pendingEntry),
		now:     now,
	}
}

// Put stores a pending booking under token for ttl.
func (s *MemoryPendingStore) Put(_ context.Context, token string, b *bookingDomain.Booking, ttl time.Duration) error {
	if err := checkPending(token, b); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[pendingKey(b.UserID(), token)] = pendingEntry{booking: b, expiresAt: s.now().Add(ttl)}
	return nil
}

// Get returns the user's pending booking for token.
func (s *MemoryPendingStore) Get(_ context.Context, userID, token string) (*bookingDomain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pendingKey(userID, token)
	entry, ok := s.entries[key]
	if !ok {
		return nil, errPendingNotFound()
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return nil, errPendingNotFound()
	}
	return entry.booking, nil
}

// Delete removes the pending booking.
func (s *MemoryPendingStore) Delete(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, pendingKey(userID, token))
	return nil
}

func pendingKey(userID, token string) string {
	return "trip:pending:" + userID + ":" + token
}

func checkPending(token string, b *bookingDomain.Booking) error {
	if token == "" {
		return domain.NewInvalidRequestError("pending token is required")
	}
	if b == nil || b.Status() != bookingDomain.StatusPending {
		return domain.NewInvalidRequestError("only pending bookings can be held")
	}
	return nil
}

func errPendingNotFound() error {
	return domain.NewInvalidRequestError("pending quote not found or expired")
}
