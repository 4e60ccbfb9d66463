package trip

import (
	"context"
	"sort"
	"strings"
)

// LocationProvider resolves a place label to coordinates.
type LocationProvider interface {
	// LookupCoordinates returns the point for label and whether it is known.
	LookupCoordinates(ctx context.Context, label string) (GeoPoint, bool, error)
}

// PricingProvider supplies the pricing table in force.
type PricingProvider interface {
	CurrentPricingTable(ctx context.Context) (PricingTable, error)
}

// DataProvider is everything the quote engine needs from the outside.
type DataProvider interface {
	LocationProvider
	PricingProvider
}

// Place is a named, known location.
type Place struct {
	Label string   `json:"label"`
	Point GeoPoint `json:"point"`
}

// StaticProvider serves a fixed place list and pricing table.
type StaticProvider struct {
	places []Place
	index  map[string]GeoPoint
	table  PricingTable
}

// NewStaticProvider creates a StaticProvider. Labels are matched case-insensitively.
func NewStaticProvider(places []Place, table PricingTable) *StaticProvider {
	p := &StaticProvider{
		places: append([]Place(nil), places...),
		index:  make(map[string]GeoPoint, len(places)),
		table:  table,
	}
	for _, pl := range places {
		p.index[normalizeLabel(pl.Label)] = pl.Point
	}
	return p
}

// NewDefaultProvider returns a StaticProvider over the built-in places.
func NewDefaultProvider(table PricingTable) *StaticProvider {
	return NewStaticProvider(DefaultPlaces(), table)
}

// LookupCoordinates implements LocationProvider.
func (p *StaticProvider) LookupCoordinates(_ context.Context, label string) (GeoPoint, bool, error) {
	pt, ok := p.index[normalizeLabel(label)]
	return pt, ok, nil
}

// CurrentPricingTable implements PricingProvider.
func (p *StaticProvider) CurrentPricingTable(_ context.Context) (PricingTable, error) {
	return p.table, nil
}

// Search returns up to limit places whose label contains query, sorted by label.
// An empty query matches nothing.
func (p *StaticProvider) Search(query string, limit int) []Place {
	q := normalizeLabel(query)
	if q == "" || limit <= 0 {
		return []Place{}
	}
	matches := make([]Place, 0, limit)
	for _, pl := range p.places {
		if strings.Contains(normalizeLabel(pl.Label), q) {
			matches = append(matches, pl)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Label < matches[j].Label })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DefaultPlaces returns the landmark and city list offered by the trip form.
func DefaultPlaces() []Place {
	return []Place{
		{Label: "Times Square, New York, NY", Point: GeoPoint{Lat: 40.7589, Lon: -73.9851}},
		{Label: "Central Park, New York, NY", Point: GeoPoint{Lat: 40.7829, Lon: -73.9654}},
		{Label: "Brooklyn Bridge, New York, NY", Point: GeoPoint{Lat: 40.7061, Lon: -73.9969}},
		{Label: "Empire State Building, New York, NY", Point: GeoPoint{Lat: 40.7484, Lon: -73.9857}},
		{Label: "Statue of Liberty, New York, NY", Point: GeoPoint{Lat: 40.6892, Lon: -74.0445}},
		{Label: "One World Trade Center, New York, NY", Point: GeoPoint{Lat: 40.7127, Lon: -74.0134}},
		{Label: "High Line, New York, NY", Point: GeoPoint{Lat: 40.7480, Lon: -74.0048}},
		{Label: "9/11 Memorial, New York, NY", Point: GeoPoint{Lat: 40.7115, Lon: -74.0134}},
		{Label: "New York, NY, USA", Point: GeoPoint{Lat: 40.7128, Lon: -74.0060}},
		{Label: "Los Angeles, CA, USA", Point: GeoPoint{Lat: 34.0522, Lon: -118.2437}},
		{Label: "Chicago, IL, USA", Point: GeoPoint{Lat: 41.8781, Lon: -87.6298}},
		{Label: "Houston, TX, USA", Point: GeoPoint{Lat: 29.7604, Lon: -95.3698}},
		{Label: "Phoenix, AZ, USA", Point: GeoPoint{Lat: 33.4484, Lon: -112.0740}},
		{Label: "Philadelphia, PA, USA", Point: GeoPoint{Lat: 39.9526, Lon: -75.1652}},
		{Label: "San Antonio, TX, USA", Point: GeoPoint{Lat: 29.4241, Lon: -98.4936}},
		{Label: "San Diego, CA, USA", Point: GeoPoint{Lat: 32.7157, Lon: -117.1611}},
		{Label: "Dallas, TX, USA", Point: GeoPoint{Lat: 32.7767, Lon: -96.7970}},
		{Label: "San Jose, CA, USA", Point: GeoPoint{Lat: 37.3382, Lon: -121.8863}},
		{Label: "Austin, TX, USA", Point: GeoPoint{Lat: 30.2672, Lon: -97.7431}},
		{Label: "Jacksonville, FL, USA", Point: GeoPoint{Lat: 30.3322, Lon: -81.6557}},
		{Label: "Fort Worth, TX, USA", Point: GeoPoint{Lat: 32.7555, Lon: -97.3308}},
		{Label: "Columbus, OH, USA", Point: GeoPoint{Lat: 39.9612, Lon: -82.9988}},
		{Label: "Charlotte, NC, USA", Point: GeoPoint{Lat: 35.2271, Lon: -80.8431}},
		{Label: "San Francisco, CA, USA", Point: GeoPoint{Lat: 37.7749, Lon: -122.4194}},
		{Label: "Indianapolis, IN, USA", Point: GeoPoint{Lat: 39.7684, Lon: -86.1581}},
		{Label: "Seattle, WA, USA", Point: GeoPoint{Lat: 47.6062, Lon: -122.3321}},
		{Label: "Denver, CO, USA", Point: GeoPoint{Lat: 39.7392, Lon: -104.9903}},
		{Label: "Boston, MA, USA", Point: GeoPoint{Lat: 42.3601, Lon: -71.0589}},
	}
}
