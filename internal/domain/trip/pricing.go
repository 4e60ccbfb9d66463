package trip

import (
	"errors"
	"fmt"
	"strings"
)

// Surcharge is a fixed amount plus a percentage, expressed in basis points (1/100 of a percent).
type Surcharge struct {
	FixedCents  int64 `json:"fixed_cents" mapstructure:"fixed_cents"`
	BasisPoints int64 `json:"basis_points" mapstructure:"basis_points"`
}

// Apply returns the surcharge on amount, rounding the percentage half up.
func (s Surcharge) Apply(amount int64) int64 {
	return s.FixedCents + (amount*s.BasisPoints+5000)/10000
}

// PricingTable holds every input of the quote formula that is not part of the trip request.
type PricingTable struct {
	Currency               string    `json:"currency" mapstructure:"currency"`
	BaseFareCents          int64     `json:"base_fare_cents" mapstructure:"base_fare_cents"`
	PerKmCents             int64     `json:"per_km_cents" mapstructure:"per_km_cents"`
	PerExtraPassengerCents int64     `json:"per_extra_passenger_cents" mapstructure:"per_extra_passenger_cents"`
	ServiceFee             Surcharge `json:"service_fee" mapstructure:"service_fee"`
	// Tax applies to base fare plus service fee.
	Tax               Surcharge `json:"tax" mapstructure:"tax"`
	NominalDistanceKm float64   `json:"nominal_distance_km" mapstructure:"nominal_distance_km"`
	FastSpeedKmh      int64     `json:"fast_speed_kmh" mapstructure:"fast_speed_kmh"`
	SlowSpeedKmh      int64     `json:"slow_speed_kmh" mapstructure:"slow_speed_kmh"`
	MinDurationFloor  int       `json:"min_duration_floor_minutes" mapstructure:"min_duration_floor_minutes"`
	MaxDurationFloor  int       `json:"max_duration_floor_minutes" mapstructure:"max_duration_floor_minutes"`
}

// DefaultPricingTable returns the standard fares.
//
// For a nominal 20 km trip with one passenger it yields:
//   - Base fare: USD 45.00 (25.00 flag + 20 km x 1.00)
//   - Service fee: USD 5.00
//   - Tax: 10% of base + fee = USD 5.00
//   - Total: USD 55.00, 2-3 hours
func DefaultPricingTable() PricingTable {
	return PricingTable{
		Currency:               "USD",
		BaseFareCents:          2500,
		PerKmCents:             100,
		PerExtraPassengerCents: 1000,
		ServiceFee:             Surcharge{FixedCents: 500},
		Tax:                    Surcharge{BasisPoints: 1000},
		NominalDistanceKm:      20,
		FastSpeedKmh:           80,
		SlowSpeedKmh:           50,
		MinDurationFloor:       120,
		MaxDurationFloor:       180,
	}
}

// Validate checks that the table produces non-negative, well-ordered quotes.
func (t PricingTable) Validate() error {
	var errs []string

	if len(t.Currency) != 3 || strings.ToUpper(t.Currency) != t.Currency {
		errs = append(errs, fmt.Sprintf("currency must be a 3-letter upper-case code, got %q", t.Currency))
	}
	if t.BaseFareCents < 0 || t.PerKmCents < 0 || t.PerExtraPassengerCents < 0 {
		errs = append(errs, "fare components must not be negative")
	}
	if t.ServiceFee.FixedCents < 0 || t.ServiceFee.BasisPoints < 0 || t.Tax.FixedCents < 0 || t.Tax.BasisPoints < 0 {
		errs = append(errs, "surcharges must not be negative")
	}
	if t.NominalDistanceKm < 0 {
		errs = append(errs, "nominal distance must not be negative")
	}
	if t.SlowSpeedKmh <= 0 || t.FastSpeedKmh < t.SlowSpeedKmh {
		errs = append(errs, "speeds must be positive with fast >= slow")
	}
	if t.MinDurationFloor < 0 || t.MaxDurationFloor < t.MinDurationFloor {
		errs = append(errs, "duration floors must be non-negative with max >= min")
	}

	if len(errs) > 0 {
		return errors.New("invalid pricing table: " + strings.Join(errs, "; "))
	}
	return nil
}
