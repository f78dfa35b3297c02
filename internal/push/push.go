package push

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dukerupert/nestcue/internal/model"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// ErrExpired is returned when a push subscription is no longer valid (404/410).
var ErrExpired = errors.New("push subscription expired")

// Payload is one notification inside a push message.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
	Type  string `json:"type,omitempty"`
	Level string `json:"level,omitempty"`
}

// BatchPayload is the message the relay sends; the service worker shows one
// notification per entry.
type BatchPayload struct {
	Notifications []Payload `json:"notifications"`
}

// PayloadFromItem converts a scheduled reminder into a push payload.
func PayloadFromItem(it model.UpcomingItem) Payload {
	return Payload{
		Title: it.NotificationTitle,
		Body:  it.NotificationBody,
		URL:   itemURL(it.Type),
		Tag:   it.Tag,
		Type:  it.Type,
		Level: it.Level,
	}
}

func itemURL(kind string) string {
	switch kind {
	case "supp":
		return "/?tab=supplements"
	case "work":
		return "/?tab=work"
	case "mood":
		return "/?openMood=1"
	case "plan":
		return "/?tab=planner"
	}
	return "/"
}

// Config holds VAPID configuration.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
	TTL             int
}

// Service handles sending web push notifications.
type Service struct {
	publicKey  string
	privateKey string
	subscriber string
	ttl        int
	httpClient *http.Client
}

// NewService creates a new push service with VAPID keys.
func NewService(cfg Config) *Service {
	if cfg.Subscriber == "" {
		cfg.Subscriber = "mailto:noreply@nestcue.app"
	}
	if cfg.TTL == 0 {
		cfg.TTL = 86400
	}
	return &Service{
		publicKey:  cfg.VAPIDPublicKey,
		privateKey: cfg.VAPIDPrivateKey,
		subscriber: cfg.Subscriber,
		ttl:        cfg.TTL,
		httpClient: http.DefaultClient,
	}
}

// Configured reports whether VAPID keys are present.
func (s *Service) Configured() bool {
	return s != nil && s.publicKey != "" && s.privateKey != ""
}

// VAPIDPublicKey returns the VAPID public key for client-side subscription.
func (s *Service) VAPIDPublicKey() string {
	return s.publicKey
}

// Send encrypts payload as JSON and delivers it to sub.
func (s *Service) Send(ctx context.Context, sub model.WebPushSubscription, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &webpush.Options{
		HTTPClient:      s.httpClient,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		Subscriber:      s.subscriber,
		TTL:             s.ttl,
		Urgency:         webpush.UrgencyHigh,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		return ErrExpired
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}

	return nil
}

// GenerateVAPIDKeys generates a new ECDSA P-256 key pair for VAPID.
func GenerateVAPIDKeys() (publicKey, privateKey string, err error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("generate ECDSA key: %w", err)
	}

	pubBytes := elliptic.Marshal(elliptic.P256(), key.PublicKey.X, key.PublicKey.Y)
	publicKey = base64.RawURLEncoding.EncodeToString(pubBytes)
	privateKey = base64.RawURLEncoding.EncodeToString(key.D.FillBytes(make([]byte, 32)))

	return publicKey, privateKey, nil
}
