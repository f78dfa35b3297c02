package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/nestcue/internal/auth"
)

// RealIP extracts the client's real IP address, preferring Cloudflare's
// CF-Connecting-IP header, then X-Forwarded-For, and falling back to RemoteAddr.
func RealIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// UserOrIP keys requests by authenticated user, falling back to client IP.
func UserOrIP(r *http.Request) string {
	if id := auth.UserID(r.Context()); id != "" {
		return "user:" + id
	}
	return "ip:" + RealIP(r)
}

type window struct {
	count   int
	resetAt time.Time
}

// RateLimiter is a fixed-window in-memory limiter.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*window
	now     func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		entries: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow reports whether key is under limit in the current window, and when
// the window resets.
func (rl *RateLimiter) Allow(key string, limit int, period time.Duration) (bool, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.entries[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(period)}
		rl.entries[key] = w
	}
	w.count++
	return w.count <= limit, w.resetAt
}

// Cleanup removes expired windows.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, w := range rl.entries {
		if !now.Before(w.resetAt) {
			delete(rl.entries, key)
		}
	}
}

// RateLimit returns middleware that rate-limits requests by a key function.
func RateLimit(limiter *RateLimiter, keyFunc func(*http.Request) string, limit int, period time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, resetAt := limiter.Allow(keyFunc(r), limit, period)
			if !ok {
				secs := int(resetAt.Sub(limiter.now()).Seconds()) + 1
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
