package model

import "time"

// Inbox entry statuses.
const (
	InboxSent      = "sent"
	InboxMissed    = "missed"
	InboxDelivered = "delivered"
	InboxOpened    = "opened"
)

// Reasons recorded on missed inbox entries.
const (
	ReasonQuietHours     = "quiet-hours"
	ReasonPermission     = "permission-not-granted"
	ReasonDeliveryFailed = "delivery-failed"
)

type NotificationAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

type NotificationData struct {
	URL        string            `json:"url"`
	ActionURLs map[string]string `json:"actionUrls,omitempty"`
}

// Notification is the object handed to the platform notifier.
type Notification struct {
	Title   string               `json:"title"`
	Body    string               `json:"body"`
	Icon    string               `json:"icon,omitempty"`
	Badge   string               `json:"badge,omitempty"`
	Tag     string               `json:"tag"`
	Data    NotificationData     `json:"data"`
	Actions []NotificationAction `json:"actions,omitempty"`
}

type InboxEntry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Type      string    `json:"type"`
	Level     string    `json:"level"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	Source    string    `json:"source"`
	SlotKey   string    `json:"slotKey"`
	DedupeKey string    `json:"dedupeKey"`
	CreatedAt time.Time `json:"createdAt"`
	Read      bool      `json:"read"`
}
