package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moove/internal/middleware"
	"moove/internal/repository/memory"
	"moove/internal/service"
)

type memoryIdempotencyStore struct {
	mu        sync.Mutex
	responses map[string]*middleware.CachedResponse
}

func (s *memoryIdempotencyStore) Get(ctx context.Context, key string) (*middleware.CachedResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	response, ok := s.responses[key]
	if !ok {
		return nil, middleware.ErrResponseNotCached
	}
	return response, nil
}

func (s *memoryIdempotencyStore) Set(ctx context.Context, key string, response *middleware.CachedResponse, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[key] = response
	return nil
}

type testServer struct {
	router *gin.Engine
	fleet  *Fleet
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	journal := memory.NewEventLog()
	fleet := NewFleet(nil, service.NewJournalObserver(journal, nil), nil)
	cityHandler, vehicleHandler, userHandler, eventHandler := fleet.Handlers(journal)

	return &testServer{
		fleet: fleet,
		router: NewRouter(RouterDeps{
			CityHandler:      cityHandler,
			VehicleHandler:   vehicleHandler,
			UserHandler:      userHandler,
			EventHandler:     eventHandler,
			IdempotencyStore: &memoryIdempotencyStore{responses: make(map[string]*middleware.CachedResponse)},
		}),
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouter_BookingFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/v1/cities", map[string]string{"name": "Gradara"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	city := decode[map[string]any](t, w)
	assert.Equal(t, float64(1), city["id"])

	w = s.do(t, http.MethodPost, "/v1/vehicles", map[string]string{"type": "E-Scooter"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	vehicle := decode[map[string]any](t, w)
	assert.Equal(t, "E_SCOOTER", vehicle["type"])
	assert.Equal(t, "E-Scooter", vehicle["display_name"])
	assert.Equal(t, "AVAILABLE", vehicle["status"])

	w = s.do(t, http.MethodPost, "/v1/cities/1/vehicles", map[string]int64{"vehicle_id": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/v1/users/register", map[string]string{
		"first_name": "Simone",
		"last_name":  "Rossi",
		"email":      "simone@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode[map[string]any](t, w)
	assert.Equal(t, "Simone Rossi", user["full_name"])

	w = s.do(t, http.MethodPost, "/v1/users/1/book", map[string]int64{"vehicle_id": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/v1/cities/1/vehicles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listing := decode[[]map[string]any](t, w)
	require.Len(t, listing, 1)
	assert.Equal(t, "IN_USE", listing[0]["status"])

	w = s.do(t, http.MethodGet, "/v1/cities/1/vehicles/available", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]map[string]any](t, w))

	// A second booking by the same user conflicts.
	s.do(t, http.MethodPost, "/v1/vehicles", map[string]string{"type": "BIKE"})
	w = s.do(t, http.MethodPost, "/v1/users/1/book", map[string]int64{"vehicle_id": 2})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "USER_ALREADY_BOOKED", decode[map[string]any](t, w)["reason"])

	// Removal of the booked vehicle is rejected.
	w = s.do(t, http.MethodDelete, "/v1/vehicles/1?city_id=1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "VEHICLE_IN_USE", decode[map[string]any](t, w)["reason"])

	w = s.do(t, http.MethodPost, "/v1/users/1/return", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/v1/users/1/return", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NOTHING_TO_RETURN", decode[map[string]any](t, w)["reason"])

	w = s.do(t, http.MethodDelete, "/v1/vehicles/1?city_id=1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/v1/vehicles/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "REMOVED", decode[map[string]any](t, w)["status"])

	w = s.do(t, http.MethodGet, "/v1/events?vehicle_id=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	events := decode[[]map[string]any](t, w)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, "REMOVE_VEHICLE", last["operation"])
	assert.Equal(t, "SUCCEEDED", last["outcome"])
}

func TestRouter_RemoveVehicleRequiresCity(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/v1/vehicles", map[string]string{"type": "SCOOTER"})

	w := s.do(t, http.MethodDelete, "/v1/vehicles/1", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CITY_REQUIRED", decode[map[string]any](t, w)["reason"])
}

func TestRouter_ValidationErrors(t *testing.T) {
	s := newTestServer(t)

	testCases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"empty city name", http.MethodPost, "/v1/cities", map[string]string{"name": "  "}, http.StatusBadRequest},
		{"unknown vehicle type", http.MethodPost, "/v1/vehicles", map[string]string{"type": "CAR"}, http.StatusBadRequest},
		{"missing last name", http.MethodPost, "/v1/users/register", map[string]string{"first_name": "Luca"}, http.StatusBadRequest},
		{"non-numeric id", http.MethodGet, "/v1/vehicles/abc", nil, http.StatusBadRequest},
		{"unknown vehicle", http.MethodGet, "/v1/vehicles/42", nil, http.StatusNotFound},
		{"unknown city listing", http.MethodGet, "/v1/cities/42/vehicles", nil, http.StatusNotFound},
		{"bad event limit", http.MethodGet, "/v1/events?limit=0", nil, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(t, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}

func TestRouter_DeleteUserReturnsVehicle(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/v1/vehicles", map[string]string{"type": "BIKE"})
	s.do(t, http.MethodPost, "/v1/users/register", map[string]string{"first_name": "Luca", "last_name": "Bianchi"})
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/v1/users/1/book", map[string]int64{"vehicle_id": 1}).Code)

	w := s.do(t, http.MethodDelete, "/v1/users/1", nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/v1/users/1", nil).Code)

	w = s.do(t, http.MethodGet, "/v1/vehicles/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "AVAILABLE", decode[map[string]any](t, w)["status"])
}

func TestRouter_IdempotentBookingReplaysResponse(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/v1/vehicles", map[string]string{"type": "BIKE"})
	s.do(t, http.MethodPost, "/v1/users/register", map[string]string{"first_name": "Simone", "last_name": "Rossi"})

	first := s.do(t, http.MethodPost, "/v1/users/1/book", map[string]int64{"vehicle_id": 1}, "Idempotency-Key", "book-1")
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())

	// Without the key, a retry would conflict; with it, the first answer is replayed.
	second := s.do(t, http.MethodPost, "/v1/users/1/book", map[string]int64{"vehicle_id": 1}, "Idempotency-Key", "book-1")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	third := s.do(t, http.MethodPost, "/v1/users/1/book", map[string]int64{"vehicle_id": 1})
	assert.Equal(t, http.StatusConflict, third.Code)
}
