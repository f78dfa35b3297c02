package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dukerupert/nestcue/internal/model"
	"github.com/dukerupert/nestcue/internal/push"
	"github.com/dukerupert/nestcue/internal/store"
)

// RelaySubscriber forwards a browser subscription to the push relay.
type RelaySubscriber interface {
	HasSession() bool
	DeviceID() string
	Subscribe(ctx context.Context, sub model.WebPushSubscription, notifEnabled bool) error
}

// PushHandler registers browser push subscriptions with the agent and,
// when signed in, with the relay.
type PushHandler struct {
	pushStore *store.PushStore
	settings  *store.SettingsStore
	service   *push.Service
	relay     RelaySubscriber
	logger    *slog.Logger
}

func NewPushHandler(ps *store.PushStore, ss *store.SettingsStore, svc *push.Service, relay RelaySubscriber, logger *slog.Logger) *PushHandler {
	return &PushHandler{pushStore: ps, settings: ss, service: svc, relay: relay, logger: logger}
}

type localSubscribeRequest struct {
	DeviceID     string                    `json:"device_id"`
	Subscription model.WebPushSubscription `json:"subscription"`
}

func validSubscription(sub model.WebPushSubscription) bool {
	return sub.Endpoint != "" && sub.Keys.P256dh != "" && sub.Keys.Auth != ""
}

// Subscribe handles POST /api/push/subscribe
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req localSubscribeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !validSubscription(req.Subscription) {
		writeError(w, http.StatusBadRequest, "endpoint, p256dh, and auth are required")
		return
	}
	if req.DeviceID == "" && h.relay != nil {
		req.DeviceID = h.relay.DeviceID()
	}
	if req.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "device_id is required")
		return
	}

	prefs, err := h.settings.GetPreferences()
	if err != nil {
		h.logger.Error("get preferences", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}

	sub, err := h.pushStore.Upsert(push.LocalUser, req.DeviceID, req.Subscription, prefs.NotificationsEnabled)
	if err != nil {
		h.logger.Error("create push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}

	if h.relay != nil && h.relay.HasSession() {
		if err := h.relay.Subscribe(r.Context(), req.Subscription, prefs.NotificationsEnabled); err != nil {
			h.logger.Warn("forward subscription to relay", "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, sub)
}

// ListSubscriptions handles GET /api/push/subscriptions
func (h *PushHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.pushStore.ListByUser(push.LocalUser)
	if err != nil {
		h.logger.Error("list push subscriptions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}
	if subs == nil {
		subs = []model.PushSubscription{}
	}
	writeJSON(w, http.StatusOK, subs)
}

// VAPIDKey handles GET /api/push/vapid-key
func (h *PushHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeVAPIDKey(w, h.service)
}

func writeVAPIDKey(w http.ResponseWriter, svc *push.Service) {
	if !svc.Configured() {
		writeError(w, http.StatusServiceUnavailable, "push notifications are not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"public_key": svc.VAPIDPublicKey()})
}
