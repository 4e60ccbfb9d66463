package trip

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Clock returns the current time.
type Clock func() time.Time

// Engine computes quotes. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	provider DataProvider
	loc      *time.Location
	now      Clock
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock sets the clock used to reject past travel dates.
func WithClock(c Clock) EngineOption {
	return func(e *Engine) { e.now = c }
}

// WithLocation sets the time zone in which travel dates are interpreted.
func WithLocation(loc *time.Location) EngineOption {
	return func(e *Engine) { e.loc = loc }
}

// NewEngine creates a new Engine backed by the given data provider.
func NewEngine(provider DataProvider, opts ...EngineOption) *Engine {
	e := &Engine{
		provider: provider,
		loc:      time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Quote validates req and prices it against the current pricing table.
func (e *Engine) Quote(ctx context.Context, req TripRequest) (Quote, error) {
	if err := req.Validate(e.now(), e.loc); err != nil {
		return Quote{}, err
	}

	table, err := e.provider.CurrentPricingTable(ctx)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to load pricing table: %w", err)
	}
	if err := table.Validate(); err != nil {
		return Quote{}, err
	}

	meters, source, err := e.distance(ctx, req, table)
	if err != nil {
		return Quote{}, err
	}

	return Price(table, meters, req.Passengers, source), nil
}

func (e *Engine) distance(ctx context.Context, req TripRequest, table PricingTable) (int64, DistanceSource, error) {
	origin, originLooked, err := e.resolve(ctx, req.Origin, req.OriginPoint)
	if err != nil {
		return 0, "", err
	}
	dest, destLooked, err := e.resolve(ctx, req.Destination, req.DestinationPoint)
	if err != nil {
		return 0, "", err
	}

	if origin == nil || dest == nil {
		return int64(math.Round(table.NominalDistanceKm * 1000)), DistanceNominal, nil
	}

	route := Route{Origin: *origin, Destination: *dest}
	source := DistanceFromCoordinates
	if originLooked || destLooked {
		source = DistanceFromLookup
	}
	return route.DistanceMeters(), source, nil
}

// resolve returns the explicit point if given, else the provider's point for label.
// The bool reports whether the provider was used.
func (e *Engine) resolve(ctx context.Context, label string, explicit *GeoPoint) (*GeoPoint, bool, error) {
	if explicit != nil {
		return explicit, false, nil
	}
	pt, ok, err := e.provider.LookupCoordinates(ctx, label)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up coordinates for %q: %w", label, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &pt, true, nil
}

// Price applies the pricing formula. All arithmetic is in integer minor units.
//
// Pricing formula:
//   - Base fare: flag fare + per-km rate (per metre, rounded up) + per extra passenger
//   - Service fee: fixed + percentage of base fare
//   - Tax: fixed + percentage of base fare plus service fee
//   - Total: base + fee + tax
func Price(table PricingTable, distanceMeters int64, passengers int, source DistanceSource) Quote {
	if distanceMeters < 0 {
		distanceMeters = 0
	}
	extra := int64(passengers - MinPassengers)
	if extra < 0 {
		extra = 0
	}

	base := table.BaseFareCents +
		ceilDiv(distanceMeters*table.PerKmCents, 1000) +
		extra*table.PerExtraPassengerCents
	fee := table.ServiceFee.Apply(base)
	tax := table.Tax.Apply(base + fee)

	return Quote{
		BaseFareCents:   base,
		ServiceFeeCents: fee,
		TaxCents:        tax,
		TotalCents:      base + fee + tax,
		Currency:        table.Currency,
		Duration:        estimateDuration(table, distanceMeters),
		DistanceMeters:  distanceMeters,
		DistanceSource:  source,
	}
}

func estimateDuration(table PricingTable, distanceMeters int64) DurationRange {
	fast := int(ceilDiv(distanceMeters*60, table.FastSpeedKmh*1000))
	slow := int(ceilDiv(distanceMeters*60, table.SlowSpeedKmh*1000))
	return DurationRange{
		MinMinutes: max(table.MinDurationFloor, fast),
		MaxMinutes: max(table.MaxDurationFloor, slow),
	}
}

func ceilDiv(a, b int64) int64 {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
