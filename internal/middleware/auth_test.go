package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukerupert/nestcue/internal/auth"
)

var testSecret = []byte("middleware-secret")

func TestRequireBearerMissingHeader(t *testing.T) {
	handler := RequireBearer(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Error("expected WWW-Authenticate header")
	}
}

func TestRequireBearerInvalidToken(t *testing.T) {
	handler := RequireBearer(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	for _, h := range []string{"Bearer nope", "Basic dXNlcjpwYXNz", "Bearer "} {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", h)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%q: status = %d, want %d", h, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestRequireBearerValidToken(t *testing.T) {
	tok, err := auth.IssueToken(testSecret, "user-1", "tablet", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	var gotUser string
	handler := RequireBearer(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = auth.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotUser != "user-1" {
		t.Errorf("user = %q, want user-1", gotUser)
	}
}
