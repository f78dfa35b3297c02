// Package websocket pushes live reminder activity to open app tabs and acts
// as the in-page fallback notifier.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/dukerupert/nestcue/internal/events"
	"github.com/dukerupert/nestcue/internal/model"
)

// Message types sent to clients besides bus event kinds.
const (
	TypeNotification = "notification"
	TypeBadge        = "badge"
)

// ErrNoClients is returned by Notify when no tab can show the notification.
var ErrNoClients = errors.New("no permitted websocket clients")

// Message is one JSON frame sent to clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Hub maintains the set of active WebSocket clients and broadcasts messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger.With("component", "websocket"),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends a message to all connected clients and returns how many
// accepted it.
func (h *Hub) Broadcast(msg Message) int {
	return h.broadcast(msg, false)
}

func (h *Hub) broadcast(msg Message, permittedOnly bool) int {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for c := range h.clients {
		if permittedOnly && !c.Permitted() {
			continue
		}
		select {
		case c.send <- data:
			n++
		default:
			// Client buffer full, drop.
		}
	}
	return n
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Attach forwards every bus event to connected clients.
func (h *Hub) Attach(bus *events.Bus) (detach func()) {
	return bus.Subscribe(func(e events.Event) {
		h.Broadcast(Message{Type: string(e.Kind), Data: e})
	})
}

func (h *Hub) Name() string { return "websocket" }

// Permitted reports whether any connected tab has notification permission.
func (h *Hub) Permitted() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.Permitted() {
			return true
		}
	}
	return false
}

// Notify asks permitted tabs to display n.
func (h *Hub) Notify(_ context.Context, n model.Notification) error {
	if h.broadcast(Message{Type: TypeNotification, Data: n}, true) == 0 {
		return ErrNoClients
	}
	return nil
}

// ClearBadge tells every tab to reset the app badge.
func (h *Hub) ClearBadge(context.Context) error {
	h.Broadcast(Message{Type: TypeBadge, Data: map[string]int{"count": 0}})
	return nil
}
