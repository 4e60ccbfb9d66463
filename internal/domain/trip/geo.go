package trip

import (
	"fmt"
	"math"

	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain"
)

const earthRadiusKm = 6371.0

// GeoPoint is a WGS 84 coordinate pair in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that the point lies within the valid latitude and longitude ranges.
func (p GeoPoint) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return domain.NewInvalidRequestError(fmt.Sprintf("latitude must be between -90 and 90, got %v", p.Lat))
	}
	if math.IsNaN(p.Lon) || p.Lon < -180 || p.Lon > 180 {
		return domain.NewInvalidRequestError(fmt.Sprintf("longitude must be between -180 and 180, got %v", p.Lon))
	}
	return nil
}

// Route is a value object for the straight-line leg between two points.
type Route struct {
	Origin      GeoPoint `json:"origin"`
	Destination GeoPoint `json:"destination"`
}

// DistanceKm returns the great-circle distance of the route.
func (r Route) DistanceKm() float64 {
	return HaversineKm(r.Origin, r.Destination)
}

// DistanceMeters returns the great-circle distance rounded to whole metres.
func (r Route) DistanceMeters() int64 {
	return int64(math.Round(r.DistanceKm() * 1000))
}

// HaversineKm calculates the great-circle distance between two points in kilometers.
func HaversineKm(a, b GeoPoint) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLon := degreesToRadians(b.Lon - a.Lon)

	lat1 := degreesToRadians(a.Lat)
	lat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
