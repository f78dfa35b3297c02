package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukerupert/nestcue/internal/auth"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter() (*RateLimiter, *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter()
	rl.now = clk.now
	return rl, clk
}

func TestRateLimiterAllow(t *testing.T) {
	rl, _ := newTestLimiter()

	for i := 0; i < 5; i++ {
		if ok, _ := rl.Allow("key", 5, time.Minute); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if ok, _ := rl.Allow("key", 5, time.Minute); ok {
		t.Error("6th request should be denied")
	}
	if ok, _ := rl.Allow("other", 5, time.Minute); !ok {
		t.Error("other key should be independent")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl, clk := newTestLimiter()

	for i := 0; i < 3; i++ {
		rl.Allow("key", 3, time.Minute)
	}
	if ok, _ := rl.Allow("key", 3, time.Minute); ok {
		t.Error("should be blocked within window")
	}

	clk.advance(time.Minute)
	if ok, _ := rl.Allow("key", 3, time.Minute); !ok {
		t.Error("should be allowed after window expires")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl, clk := newTestLimiter()

	rl.Allow("expired", 5, time.Second)
	clk.advance(2 * time.Second)
	rl.Allow("active", 5, time.Minute)

	rl.Cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.entries["expired"]; ok {
		t.Error("expired entry should have been cleaned up")
	}
	if _, ok := rl.entries["active"]; !ok {
		t.Error("active entry should still exist")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl, _ := newTestLimiter()
	keyFunc := func(r *http.Request) string { return "test" }

	handler := RateLimit(rl, keyFunc, 2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("PUT", "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	req := httptest.NewRequest("PUT", "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("3rd request: status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if rec.Header().Get("Retry-After") != "61" {
		t.Errorf("Retry-After = %q, want 61", rec.Header().Get("Retry-After"))
	}
}

func TestUserOrIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.5:4312"
	if got := UserOrIP(req); got != "ip:10.0.0.5" {
		t.Errorf("anonymous key = %q", got)
	}

	req = req.WithContext(auth.WithClaims(context.Background(), auth.Claims{UserID: "u9"}))
	if got := UserOrIP(req); got != "user:u9" {
		t.Errorf("authenticated key = %q", got)
	}
}

func TestRealIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := RealIP(req); got != "203.0.113.9" {
		t.Errorf("RealIP = %q", got)
	}
	req.Header.Set("CF-Connecting-IP", "198.51.100.2")
	if got := RealIP(req); got != "198.51.100.2" {
		t.Errorf("RealIP = %q", got)
	}
}
