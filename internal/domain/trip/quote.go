package trip

import (
	"fmt"

	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain"
)

// DistanceSource records where the quoted distance came from.
type DistanceSource string

const (
	DistanceFromCoordinates DistanceSource = "coordinates"
	DistanceFromLookup      DistanceSource = "lookup"
	DistanceNominal         DistanceSource = "nominal"
)

// DurationRange is an estimated travel time window in whole minutes.
type DurationRange struct {
	MinMinutes int `json:"min_minutes"`
	MaxMinutes int `json:"max_minutes"`
}

// Quote is an immutable priced estimate. Amounts are in the currency's minor unit.
type Quote struct {
	BaseFareCents   int64          `json:"base_fare_cents"`
	ServiceFeeCents int64          `json:"service_fee_cents"`
	TaxCents        int64          `json:"tax_cents"`
	TotalCents      int64          `json:"total_cents"`
	Currency        string         `json:"currency"`
	Duration        DurationRange  `json:"estimated_duration"`
	DistanceMeters  int64          `json:"distance_meters"`
	DistanceSource  DistanceSource `json:"distance_source"`
}

// Validate checks the internal consistency of a quote.
func (q Quote) Validate() error {
	if q.BaseFareCents < 0 || q.ServiceFeeCents < 0 || q.TaxCents < 0 {
		return domain.NewInvalidRequestError("quote amounts must not be negative")
	}
	if q.TotalCents != q.BaseFareCents+q.ServiceFeeCents+q.TaxCents {
		return domain.NewInvalidRequestError(fmt.Sprintf("quote total %d does not equal base %d + fee %d + tax %d",
			q.TotalCents, q.BaseFareCents, q.ServiceFeeCents, q.TaxCents))
	}
	if len(q.Currency) != 3 {
		return domain.NewInvalidRequestError(fmt.Sprintf("invalid currency code %q", q.Currency))
	}
	if q.Duration.MinMinutes < 0 || q.Duration.MinMinutes > q.Duration.MaxMinutes {
		return domain.NewInvalidRequestError("invalid estimated duration range")
	}
	if q.DistanceMeters < 0 {
		return domain.NewInvalidRequestError("quote distance must not be negative")
	}
	switch q.DistanceSource {
	case DistanceFromCoordinates, DistanceFromLookup, DistanceNominal:
	default:
		return domain.NewInvalidRequestError(fmt.Sprintf("unknown distance source %q", q.DistanceSource))
	}
	return nil
}

// FormatCents renders a minor-unit amount as a decimal string, e.g. 5500 -> "55.00".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
