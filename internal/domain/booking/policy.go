package booking

import (
	"time"

	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain"
)

// DefaultCancellationCutoff is how long before departure a booking stops being cancellable.
const DefaultCancellationCutoff = 2 * time.Hour

// CancellationPolicy decides whether a confirmed booking may still be cancelled.
type CancellationPolicy struct {
	Cutoff time.Duration
}

// DefaultCancellationPolicy returns the policy with the standard two-hour cutoff.
func DefaultCancellationPolicy() CancellationPolicy {
	return CancellationPolicy{Cutoff: DefaultCancellationCutoff}
}

// Deadline returns the last instant at which b may be cancelled.
func (p CancellationPolicy) Deadline(b *Booking, loc *time.Location) time.Time {
	return b.DepartureAt(loc).Add(-p.Cutoff)
}

// Check returns CancellationWindowExpired if now is past the deadline.
// Cancelling exactly at the deadline is allowed.
func (p CancellationPolicy) Check(b *Booking, now time.Time, loc *time.Location) error {
	if now.After(p.Deadline(b, loc)) {
		return domain.NewCancellationWindowExpiredError(b.DepartureAt(loc), p.Cutoff)
	}
	return nil
}
