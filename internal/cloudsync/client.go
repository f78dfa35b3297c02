package cloudsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/nestcue/internal/model"
	"github.com/sethvargo/go-retry"
)

// ErrUnauthorized is returned when the relay rejects the session token.
var ErrUnauthorized = errors.New("relay rejected session token")

// ErrNotSubscribed is returned when reminders are uploaded for a device the
// relay has no subscription for.
var ErrNotSubscribed = errors.New("device not subscribed")

// Config holds relay connection settings.
type Config struct {
	BaseURL    string
	Token      string
	DeviceID   string
	MaxRetries uint64
	Backoff    time.Duration
}

// RemindersRequest is the body of PUT /api/push/reminders.
type RemindersRequest struct {
	DeviceID     string               `json:"device_id"`
	Reminders    []model.UpcomingItem `json:"reminders"`
	NotifEnabled bool                 `json:"notif_enabled"`
}

// SubscribeRequest is the body of POST /api/push/subscribe.
type SubscribeRequest struct {
	DeviceID     string                    `json:"device_id"`
	Subscription model.WebPushSubscription `json:"subscription"`
	NotifEnabled bool                      `json:"notif_enabled"`
}

// Client talks to the push relay.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Backoff == 0 {
		cfg.Backoff = 250 * time.Millisecond
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// HasSession reports whether a relay URL and session token are configured.
func (c *Client) HasSession() bool {
	return c.cfg.BaseURL != "" && c.cfg.Token != ""
}

func (c *Client) DeviceID() string {
	return c.cfg.DeviceID
}

// PutReminders replaces the device's pending reminders on the relay.
func (c *Client) PutReminders(ctx context.Context, items []model.UpcomingItem, notifEnabled bool) error {
	if items == nil {
		items = []model.UpcomingItem{}
	}
	return c.do(ctx, http.MethodPut, "/api/push/reminders", RemindersRequest{
		DeviceID:     c.cfg.DeviceID,
		Reminders:    items,
		NotifEnabled: notifEnabled,
	})
}

// Subscribe upserts the device's Web Push subscription on the relay.
func (c *Client) Subscribe(ctx context.Context, sub model.WebPushSubscription, notifEnabled bool) error {
	return c.do(ctx, http.MethodPost, "/api/push/subscribe", SubscribeRequest{
		DeviceID:     c.cfg.DeviceID,
		Subscription: sub,
		NotifEnabled: notifEnabled,
	})
}

// VAPIDKey fetches the relay's public application server key.
func (c *Client) VAPIDKey(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/push/vapid-key", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("vapid key request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vapid key request: status %d", resp.StatusCode)
	}
	var out struct {
		PublicKey string `json:"public_key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode vapid key: %w", err)
	}
	return out.PublicKey, nil
}

// do sends a JSON request, retrying network errors and 5xx responses with
// exponential backoff.
func (c *Client) do(ctx context.Context, method, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	backoff := retry.WithMaxRetries(c.cfg.MaxRetries, retry.NewExponential(c.cfg.Backoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%s %s: %w", method, path, err))
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return nil
		case resp.StatusCode == http.StatusUnauthorized:
			return ErrUnauthorized
		case resp.StatusCode == http.StatusNotFound:
			return ErrNotSubscribed
		case resp.StatusCode >= 500:
			return retry.RetryableError(fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode))
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	})
}
