package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/autolenis/autolenis-backend/pkg/config"
)

type fakeLimiterStore struct {
	counts map[string]int64
	err    error
}

func (f *fakeLimiterStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func rateLimitedHandler(cfg config.RateLimitConfig, store rateLimiterStore) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return RateLimit(cfg, store, nil)(next)
}

func TestRateLimitBlocksAfterWindowCap(t *testing.T) {
	store := &fakeLimiterStore{}
	handler := rateLimitedHandler(config.RateLimitConfig{Window: time.Minute, RequestsPerWindow: 2}, store)

	userCtx := WithUserID(context.Background(), "user-1")
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil).WithContext(userCtx)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusNoContent {
			t.Fatalf("request %d expected 204 got %d", i+1, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil).WithContext(userCtx)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 over the cap got %d", resp.Code)
	}
}

func TestRateLimitScopesPerUser(t *testing.T) {
	store := &fakeLimiterStore{}
	handler := rateLimitedHandler(config.RateLimitConfig{Window: time.Minute, RequestsPerWindow: 1}, store)

	first := httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil).
		WithContext(WithUserID(context.Background(), "user-a"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, first)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for first user got %d", resp.Code)
	}

	second := httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil).
		WithContext(WithUserID(context.Background(), "user-b"))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, second)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for second user got %d", resp.Code)
	}
}

func TestRateLimitFailsOpenWhenStoreErrors(t *testing.T) {
	store := &fakeLimiterStore{err: errors.New("redis down")}
	handler := rateLimitedHandler(config.RateLimitConfig{Window: time.Minute, RequestsPerWindow: 1}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil).
		WithContext(WithUserID(context.Background(), "user-1"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected fail-open 204 got %d", resp.Code)
	}
}

func TestRateLimitDisabledByZeroConfig(t *testing.T) {
	handler := rateLimitedHandler(config.RateLimitConfig{}, &fakeLimiterStore{})

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusNoContent {
			t.Fatalf("expected 204 with limiter disabled got %d", resp.Code)
		}
	}
}
