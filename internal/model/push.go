package model

import "time"

// UpcomingItem is one future-dated reminder synced to the push relay.
type UpcomingItem struct {
	Type              string    `json:"type"`
	Level             string    `json:"level"`
	NotificationTitle string    `json:"notificationTitle"`
	NotificationBody  string    `json:"notificationBody"`
	Tag               string    `json:"tag"`
	FireAt            time.Time `json:"fireAt"`
	PriorityScore     float64   `json:"priorityScore"`
}

type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// WebPushSubscription mirrors the browser PushSubscription JSON.
type WebPushSubscription struct {
	Endpoint string           `json:"endpoint"`
	Keys     SubscriptionKeys `json:"keys"`
}

// PushSubscription is one device row held by the relay.
type PushSubscription struct {
	ID               int64               `json:"id"`
	UserID           string              `json:"user_id"`
	DeviceID         string              `json:"device_id"`
	Subscription     WebPushSubscription `json:"subscription"`
	PendingReminders []UpcomingItem      `json:"pending_reminders"`
	LastPushAt       *time.Time          `json:"last_push_at"`
	Enabled          bool                `json:"enabled"`
	NotifEnabled     bool                `json:"notif_enabled"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}
