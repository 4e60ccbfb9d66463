package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := NewInvalidTransitionError("cancelled", "cancelled")

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NotErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, "invalid_transition: cannot transition from cancelled to cancelled", err.Error())
}

func TestError_IsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("store: %w", NewBookingNotFoundError("abc"))

	assert.True(t, errors.Is(err, ErrBookingNotFound))
	assert.Equal(t, KindBookingNotFound, KindOf(err))
}

func TestKindOf_NonDomainError(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("boom")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestNewCancellationWindowExpiredError(t *testing.T) {
	departure := time.Date(2026, 10, 20, 9, 30, 0, 0, time.UTC)
	err := NewCancellationWindowExpiredError(departure, 2*time.Hour)

	assert.ErrorIs(t, err, ErrCancellationWindowExpired)
	assert.Contains(t, err.Error(), "2h0m0s")
	assert.Contains(t, err.Error(), "2026-10-20T09:30:00Z")
}
