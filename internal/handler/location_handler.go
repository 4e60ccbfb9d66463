package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain/trip"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/response"
)

const maxLocationResults = 10

// PlaceSearcher finds known places by label.
type PlaceSearcher interface {
	Search(query string, limit int) []trip.Place
}

// LocationHandler serves place suggestions for the trip form.
type LocationHandler struct {
	places PlaceSearcher
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(places PlaceSearcher) *LocationHandler {
	return &LocationHandler{places: places}
}

// RegisterRoutes registers the location routes. They are public.
func (h *LocationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/api/v1/locations", h.Search)
}

// Search handles GET /api/v1/locations?q=&limit=.
func (h *LocationHandler) Search(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if err != nil || limit < 1 {
		limit = 5
	}
	if limit > maxLocationResults {
		limit = maxLocationResults
	}

	response.Success(c, h.places.Search(c.Query("q"), limit))
}
