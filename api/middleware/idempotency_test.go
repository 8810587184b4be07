package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"storefront-backend/pkg/config"
)

type fakeIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]string
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{entries: map[string]string{}}
}

func (f *fakeIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.entries[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[key]; ok {
		return false, nil
	}
	f.entries[key] = value.(string)
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "test:idempotency:" + scope + ":" + id
}

func (f *fakeIdempotencyStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

func newIdempotentRouter(store *fakeIdempotencyStore, hits *int) http.Handler {
	r := chi.NewRouter()
	r.Use(Idempotency(store, config.CheckoutConfig{IdempotencyTTL: time.Hour}, nil))
	r.Post("/api/v1/checkout", func(w http.ResponseWriter, _ *http.Request) {
		*hits++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"order":"ORD-1"}}`))
	})
	return r
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeIdempotencyStore()
	hits := 0
	router := newIdempotentRouter(store, &hits)

	first := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"address_id":"a"}`))
	first.Header.Set("Idempotency-Key", "key-1")
	firstRec := httptest.NewRecorder()
	router.ServeHTTP(firstRec, first)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"address_id":"a"}`))
	second.Header.Set("Idempotency-Key", "key-1")
	secondRec := httptest.NewRecorder()
	router.ServeHTTP(secondRec, second)

	if hits != 1 {
		t.Fatalf("expected the handler to run once, ran %d times", hits)
	}
	if firstRec.Code != http.StatusCreated || secondRec.Code != http.StatusCreated {
		t.Fatalf("unexpected statuses %d and %d", firstRec.Code, secondRec.Code)
	}
	if firstRec.Body.String() != secondRec.Body.String() {
		t.Fatalf("replayed body mismatch: %q vs %q", firstRec.Body.String(), secondRec.Body.String())
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	store := newFakeIdempotencyStore()
	hits := 0
	router := newIdempotentRouter(store, &hits)

	first := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"address_id":"a"}`))
	first.Header.Set("Idempotency-Key", "key-1")
	router.ServeHTTP(httptest.NewRecorder(), first)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"address_id":"b"}`))
	second.Header.Set("Idempotency-Key", "key-1")
	secondRec := httptest.NewRecorder()
	router.ServeHTTP(secondRec, second)

	if hits != 1 {
		t.Fatalf("expected the handler to run once, ran %d times", hits)
	}
	if secondRec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for key reuse, got %d", secondRec.Code)
	}
}

func TestIdempotencyRequiresHeaderOnGuardedRoutes(t *testing.T) {
	store := newFakeIdempotencyStore()
	hits := 0
	router := newIdempotentRouter(store, &hits)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if hits != 0 {
		t.Fatalf("expected handler to be blocked, ran %d times", hits)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key, got %d", rec.Code)
	}
}

func TestIdempotencySkipsUnguardedRoutes(t *testing.T) {
	store := newFakeIdempotencyStore()
	r := chi.NewRouter()
	r.Use(Idempotency(store, config.CheckoutConfig{}, nil))
	hits := 0
	r.Get("/api/v1/products", func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), req)

	if hits != 2 {
		t.Fatalf("expected both requests to reach the handler, got %d", hits)
	}
}
