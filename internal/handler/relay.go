package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/nestcue/internal/auth"
	"github.com/dukerupert/nestcue/internal/cloudsync"
	"github.com/dukerupert/nestcue/internal/metrics"
	"github.com/dukerupert/nestcue/internal/model"
	"github.com/dukerupert/nestcue/internal/push"
	"github.com/dukerupert/nestcue/internal/store"
)

// MaxPendingReminders caps one device's uploaded schedule.
const MaxPendingReminders = 200

// RelayStore is the subscription storage the relay endpoints need.
type RelayStore interface {
	Upsert(userID, deviceID string, sub model.WebPushSubscription, notifEnabled bool) (*model.PushSubscription, error)
	ReplaceReminders(userID, deviceID string, items []model.UpcomingItem, notifEnabled bool) error
}

// RelayHandler serves the push relay API used by agents.
type RelayHandler struct {
	store   RelayStore
	service *push.Service
	logger  *slog.Logger
}

func NewRelayHandler(rs RelayStore, svc *push.Service, logger *slog.Logger) *RelayHandler {
	return &RelayHandler{store: rs, service: svc, logger: logger}
}

// Subscribe handles POST /api/push/subscribe
func (h *RelayHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req cloudsync.SubscribeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "device_id is required")
		return
	}
	if !validSubscription(req.Subscription) {
		writeError(w, http.StatusBadRequest, "endpoint, p256dh, and auth are required")
		return
	}

	sub, err := h.store.Upsert(userID, req.DeviceID, req.Subscription, req.NotifEnabled)
	if err != nil {
		h.logger.Error("upsert push subscription", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// PutReminders handles PUT /api/push/reminders
func (h *RelayHandler) PutReminders(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req cloudsync.RemindersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "device_id is required")
		return
	}
	if len(req.Reminders) > MaxPendingReminders {
		writeError(w, http.StatusRequestEntityTooLarge, "too many reminders")
		return
	}
	for _, it := range req.Reminders {
		if it.FireAt.IsZero() {
			writeError(w, http.StatusBadRequest, "every reminder needs fireAt")
			return
		}
	}

	err := h.store.ReplaceReminders(userID, req.DeviceID, req.Reminders, req.NotifEnabled)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "device is not subscribed")
		return
	}
	if err != nil {
		h.logger.Error("replace reminders", "user_id", userID, "device_id", req.DeviceID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save reminders")
		return
	}
	metrics.RemindersUploaded.Observe(float64(len(req.Reminders)))
	w.WriteHeader(http.StatusNoContent)
}

// VAPIDKey handles GET /api/push/vapid-key
func (h *RelayHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeVAPIDKey(w, h.service)
}
