package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubStore struct {
	responses map[string]*CachedResponse
	getErr    error
	sets      int
}

func (s *stubStore) Get(ctx context.Context, key string) (*CachedResponse, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if response, ok := s.responses[key]; ok {
		return response, nil
	}
	return nil, ErrResponseNotCached
}

func (s *stubStore) Set(ctx context.Context, key string, response *CachedResponse, ttl time.Duration) error {
	s.sets++
	s.responses[key] = response
	return nil
}

func newCountingRouter(store IdempotencyStore, calls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(IdempotencyMiddleware(store, zap.NewNop()))
	handler := func(c *gin.Context) {
		*calls++
		c.JSON(http.StatusCreated, gin.H{"call": *calls})
	}
	router.POST("/a", handler)
	router.POST("/b", handler)
	router.GET("/a", handler)
	return router
}

func send(router *gin.Engine, method, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysSameKeySamePath(t *testing.T) {
	store := &stubStore{responses: make(map[string]*CachedResponse)}
	calls := 0
	router := newCountingRouter(store, &calls)

	first := send(router, http.MethodPost, "/a", "k1")
	second := send(router, http.MethodPost, "/a", "k1")

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestIdempotency_KeyIsScopedToPath(t *testing.T) {
	store := &stubStore{responses: make(map[string]*CachedResponse)}
	calls := 0
	router := newCountingRouter(store, &calls)

	send(router, http.MethodPost, "/a", "k1")
	send(router, http.MethodPost, "/b", "k1")

	assert.Equal(t, 2, calls)
}

func TestIdempotency_SkipsReadsAndMissingKeys(t *testing.T) {
	store := &stubStore{responses: make(map[string]*CachedResponse)}
	calls := 0
	router := newCountingRouter(store, &calls)

	send(router, http.MethodGet, "/a", "k1")
	send(router, http.MethodGet, "/a", "k1")
	send(router, http.MethodPost, "/a", "")
	send(router, http.MethodPost, "/a", "")

	assert.Equal(t, 4, calls)
	assert.Equal(t, 0, store.sets)
}

func TestIdempotency_StoreErrorFallsThrough(t *testing.T) {
	store := &stubStore{responses: make(map[string]*CachedResponse), getErr: errors.New("redis down")}
	calls := 0
	router := newCountingRouter(store, &calls)

	send(router, http.MethodPost, "/a", "k1")
	send(router, http.MethodPost, "/a", "k1")

	assert.Equal(t, 2, calls)
}

func TestIdempotency_NilStoreDisables(t *testing.T) {
	calls := 0
	router := newCountingRouter(nil, &calls)

	send(router, http.MethodPost, "/a", "k1")
	send(router, http.MethodPost, "/a", "k1")

	assert.Equal(t, 2, calls)
}
