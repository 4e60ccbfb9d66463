package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-trip/internal/application"
	bookingDomain "github.com/Kilat-Pet-Delivery/service-trip/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain/trip"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/events"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/identity"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/repository"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Total int64 `json:"total"`
	} `json:"meta"`
}

type testServer struct {
	router *gin.Engine
	now    time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{now: time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return ts.now }

	provider := trip.NewDefaultProvider(trip.DefaultPricingTable())
	engine := trip.NewEngine(provider, trip.WithClock(clock))
	store := repository.NewLocalStore()
	lifecycle := bookingDomain.NewLifecycle(store, bookingDomain.WithLifecycleClock(clock))
	service := application.NewBookingService(engine, lifecycle, store,
		repository.NewMemoryPendingStore(clock), events.NopPublisher{},
		application.Options{Clock: clock}, zap.NewNop())

	tokens := identity.NewJWTManager("test-secret", time.Hour)
	ids := identity.NewService(tokens, func(email string) bool { return email == "admin@example.com" })

	r := gin.New()
	NewAuthHandler(ids).RegisterRoutes(&r.RouterGroup)
	NewLocationHandler(provider).RegisterRoutes(&r.RouterGroup)
	NewBookingHandler(service).RegisterRoutes(&r.RouterGroup, tokens)
	NewAdminBookingHandler(service).RegisterRoutes(&r.RouterGroup, tokens)
	NewHealthHandler("service-trip", map[string]HealthCheck{
		"store": func(context.Context) error { return nil },
	}).RegisterRoutes(r)

	ts.router = r
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func (ts *testServer) login(t *testing.T, email string) string {
	t.Helper()
	w, env := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: email, Password: "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result identity.AuthResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	return result.AccessToken
}

func quoteForm() application.CreateQuoteRequest {
	return application.CreateQuoteRequest{
		Origin:      "Times Square, New York, NY",
		Destination: "Central Park, New York, NY",
		TravelDate:  "2026-10-15",
		TravelTime:  "09:30",
		Passengers:  2,
	}
}

func (ts *testServer) book(t *testing.T, token string) application.BookingDTO {
	t.Helper()
	w, env := ts.do(t, http.MethodPost, "/api/v1/quotes", token, quoteForm())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var quote application.QuoteDTO
	require.NoError(t, json.Unmarshal(env.Data, &quote))

	w, env = ts.do(t, http.MethodPost, "/api/v1/bookings", token, application.ConfirmBookingRequest{PendingToken: quote.PendingToken})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var bk application.BookingDTO
	require.NoError(t, json.Unmarshal(env.Data, &bk))
	return bk
}

func TestBookingFlow(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "alice@example.com")

	bk := ts.book(t, token)
	assert.Equal(t, "confirmed", bk.Status)
	assert.Equal(t, 2, bk.Trip.Passengers)
	assert.Equal(t, trip.DistanceFromLookup, bk.Quote.DistanceSource)
	assert.True(t, bk.Cancellable)

	w, env := ts.do(t, http.MethodGet, "/api/v1/bookings", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []application.BookingDTO
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, bk.ID, list[0].ID)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Total)

	w, _ = ts.do(t, http.MethodGet, "/api/v1/bookings/"+bk.ID.String(), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = ts.do(t, http.MethodPost, "/api/v1/bookings/"+bk.ID.String()+"/cancel", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cancelled application.BookingDTO
	require.NoError(t, json.Unmarshal(env.Data, &cancelled))
	assert.Equal(t, "cancelled", cancelled.Status)

	w, env = ts.do(t, http.MethodPost, "/api/v1/bookings/"+bk.ID.String()+"/cancel", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "invalid_transition", env.Error.Kind)
}

func TestBookings_ListHugePage(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "alice@example.com")
	ts.book(t, token)

	w, env := ts.do(t, http.MethodGet, "/api/v1/bookings?page=9223372036854775807&limit=20", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var list []application.BookingDTO
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Empty(t, list)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Total)
}

func TestBookings_RequireAuth(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(t, http.MethodGet, "/api/v1/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)

	w, _ = ts.do(t, http.MethodPost, "/api/v1/quotes", "not-a-token", quoteForm())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBookings_ErrorMapping(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.login(t, "alice@example.com")
	bob := ts.login(t, "bob@example.com")
	bk := ts.book(t, alice)

	w, env := ts.do(t, http.MethodGet, "/api/v1/bookings/"+bk.ID.String(), bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "booking_not_found", env.Error.Kind)

	w, _ = ts.do(t, http.MethodGet, "/api/v1/bookings/not-a-uuid", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	form := quoteForm()
	form.Passengers = 12
	w, env = ts.do(t, http.MethodPost, "/api/v1/quotes", alice, form)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "invalid_request", env.Error.Kind)

	w, _ = ts.do(t, http.MethodPost, "/api/v1/bookings", alice, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ts.now = time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	w, env = ts.do(t, http.MethodPost, "/api/v1/bookings/"+bk.ID.String()+"/cancel", alice, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "cancellation_window_expired", env.Error.Kind)
}

func TestAdminRoutes(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.login(t, "alice@example.com")
	admin := ts.login(t, "admin@example.com")
	bk := ts.book(t, alice)

	w, _ := ts.do(t, http.MethodGet, "/api/v1/admin/stats/bookings", alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := ts.do(t, http.MethodGet, "/api/v1/admin/stats/bookings", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats application.BookingStatsDTO
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(1), stats.TotalBookings)

	w, _ = ts.do(t, http.MethodPost, "/api/v1/admin/bookings/"+bk.ID.String()+"/complete", admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	ts.now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	w, env = ts.do(t, http.MethodPost, "/api/v1/admin/bookings/"+bk.ID.String()+"/complete", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var done application.BookingDTO
	require.NoError(t, json.Unmarshal(env.Data, &done))
	assert.Equal(t, "completed", done.Status)

	w, _ = ts.do(t, http.MethodPost, "/api/v1/admin/bookings/"+uuid.NewString()+"/complete", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthHandler_Signup(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(t, http.MethodPost, "/api/v1/auth/signup", "", SignupRequest{Name: "Alice", Email: "Alice@Example.com", Password: "secret123"})
	require.Equal(t, http.StatusCreated, w.Code)
	var result identity.AuthResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "alice@example.com", result.Session.Email)
	assert.Equal(t, identity.UserIDForEmail("alice@example.com"), result.Session.UserID)

	w, _ = ts.do(t, http.MethodPost, "/api/v1/auth/signup", "", SignupRequest{Name: "A", Email: "a@example.com", Password: "secret123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLocationHandler_Search(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(t, http.MethodGet, "/api/v1/locations?q=new+york&limit=3", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var places []trip.Place
	require.NoError(t, json.Unmarshal(env.Data, &places))
	assert.Len(t, places, 3)

	w, env = ts.do(t, http.MethodGet, "/api/v1/locations", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &places))
	assert.Empty(t, places)
}

func TestHealthHandler(t *testing.T) {
	ts := newTestServer(t)

	w, _ := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = ts.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHealthHandler("service-trip", map[string]HealthCheck{
		"database": func(context.Context) error { return errors.New("connection refused") },
	}).RegisterRoutes(r)
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}
