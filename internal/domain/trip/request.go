package trip

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain"
)

const (
	MinPassengers = 1
	MaxPassengers = 8
)

// TripRequest is the plain trip description entered by the traveller.
type TripRequest struct {
	Origin           string     `json:"origin"`
	Destination      string     `json:"destination"`
	OriginPoint      *GeoPoint  `json:"origin_point,omitempty"`
	DestinationPoint *GeoPoint  `json:"destination_point,omitempty"`
	TravelDate       civil.Date `json:"travel_date"`
	TravelTime       TimeOfDay  `json:"travel_time"`
	Passengers       int        `json:"passengers"`
}

// UnmarshalJSON requires travel_time to be present, since its zero value is a valid 00:00.
func (r *TripRequest) UnmarshalJSON(data []byte) error {
	type plain TripRequest
	var aux struct {
		plain
		TravelTime *TimeOfDay `json:"travel_time"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.TravelTime == nil {
		return domain.NewInvalidRequestError("travel time is required")
	}
	*r = TripRequest(aux.plain)
	r.TravelTime = *aux.TravelTime
	return nil
}

// ValidateShape checks every rule that does not depend on the current date.
// Persisted bookings are checked with this, since their travel dates may be in the past.
func (r TripRequest) ValidateShape() error {
	if strings.TrimSpace(r.Origin) == "" {
		return domain.NewInvalidRequestError("origin is required")
	}
	if strings.TrimSpace(r.Destination) == "" {
		return domain.NewInvalidRequestError("destination is required")
	}
	if sameLabel(r.Origin, r.Destination) {
		return domain.NewInvalidRequestError("origin and destination cannot be the same")
	}
	if r.Passengers < MinPassengers || r.Passengers > MaxPassengers {
		return domain.NewInvalidRequestError(fmt.Sprintf("passenger count must be between %d and %d, got %d",
			MinPassengers, MaxPassengers, r.Passengers))
	}
	if !r.TravelDate.IsValid() {
		return domain.NewInvalidRequestError("travel date is required")
	}
	if !r.TravelTime.IsValid() {
		return domain.NewInvalidRequestError(fmt.Sprintf("invalid travel time %s", r.TravelTime))
	}
	if r.OriginPoint != nil {
		if err := r.OriginPoint.Validate(); err != nil {
			return err
		}
	}
	if r.DestinationPoint != nil {
		if err := r.DestinationPoint.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the request as submitted at now. The travel date is compared with
// today's calendar date in loc.
func (r TripRequest) Validate(now time.Time, loc *time.Location) error {
	if err := r.ValidateShape(); err != nil {
		return err
	}
	today := civil.DateOf(now.In(loc))
	if r.TravelDate.Before(today) {
		return domain.NewInvalidRequestError(fmt.Sprintf("travel date %s is in the past", r.TravelDate))
	}
	return nil
}

// DepartureAt returns the scheduled departure instant in loc.
func (r TripRequest) DepartureAt(loc *time.Location) time.Time {
	d := r.TravelDate
	return time.Date(d.Year, d.Month, d.Day, r.TravelTime.Hour, r.TravelTime.Minute, 0, 0, loc)
}

func sameLabel(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
