package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain"
)

func TestMemoryPendingStore(t *testing.T) {
	now := testNow
	store := NewMemoryPendingStore(func() time.Time { return now })
	ctx := context.Background()
	pending := testPending(t, "u-alice")

	require.NoError(t, store.Put(ctx, "tok-1", pending, 5*time.Minute))

	got, err := store.Get(ctx, "u-alice", "tok-1")
	require.NoError(t, err)
	assert.Equal(t, pending.Quote(), got.Quote())

	_, err = store.Get(ctx, "u-bob", "tok-1")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	require.NoError(t, store.Delete(ctx, "u-alice", "tok-1"))
	_, err = store.Get(ctx, "u-alice", "tok-1")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.NoError(t, store.Delete(ctx, "u-alice", "tok-1"))
}

func TestMemoryPendingStore_Expiry(t *testing.T) {
	now := testNow
	store := NewMemoryPendingStore(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "tok-1", testPending(t, "u-alice"), time.Minute))

	now = now.Add(59 * time.Second)
	_, err := store.Get(ctx, "u-alice", "tok-1")
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = store.Get(ctx, "u-alice", "tok-1")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestMemoryPendingStore_RejectsNonPending(t *testing.T) {
	store := NewMemoryPendingStore(nil)
	ctx := context.Background()

	err := store.Put(ctx, "tok-1", confirmedBooking(t, "u-alice", 0), time.Minute)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	err = store.Put(ctx, "", testPending(t, "u-alice"), time.Minute)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	err = store.Put(ctx, "tok-1", nil, time.Minute)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}
