package cloudsync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dukerupert/nestcue/internal/model"
)

func TestPutReminders(t *testing.T) {
	var got RemindersRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/push/reminders" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer session-token" {
			t.Errorf("authorization = %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL + "/", Token: "session-token", DeviceID: "device-1"})
	fireAt := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	items := []model.UpcomingItem{{Type: "mood", Tag: "mood-2024-03-06-noon", FireAt: fireAt}}

	if err := c.PutReminders(context.Background(), items, true); err != nil {
		t.Fatalf("put reminders: %v", err)
	}
	if got.DeviceID != "device-1" || !got.NotifEnabled || len(got.Reminders) != 1 {
		t.Errorf("body = %+v", got)
	}
	if !got.Reminders[0].FireAt.Equal(fireAt) {
		t.Errorf("fireAt = %v, want %v", got.Reminders[0].FireAt, fireAt)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, Token: "t", DeviceID: "d", Backoff: time.Millisecond})
	if err := c.Subscribe(context.Background(), model.WebPushSubscription{Endpoint: "https://push.example.com/x"}, true); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, Token: "t", DeviceID: "d", Backoff: time.Millisecond})
	err := c.PutReminders(context.Background(), nil, true)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestClientGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, Token: "t", DeviceID: "d", MaxRetries: 2, Backoff: time.Millisecond})
	if err := c.PutReminders(context.Background(), nil, true); err == nil {
		t.Error("expected error after retries")
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestVAPIDKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"public_key": "BPubKey"})
	}))
	defer server.Close()

	key, err := NewClient(Config{BaseURL: server.URL}).VAPIDKey(context.Background())
	if err != nil {
		t.Fatalf("vapid key: %v", err)
	}
	if key != "BPubKey" {
		t.Errorf("key = %q", key)
	}
}

func TestHasSession(t *testing.T) {
	if NewClient(Config{BaseURL: "https://relay.example.com"}).HasSession() {
		t.Error("expected no session without token")
	}
	if !NewClient(Config{BaseURL: "https://relay.example.com", Token: "t"}).HasSession() {
		t.Error("expected session with url and token")
	}
}
