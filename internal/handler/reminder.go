package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/nestcue/internal/model"
	"github.com/dukerupert/nestcue/internal/scheduler"
	"github.com/dukerupert/nestcue/internal/store"
)

const (
	defaultInboxLimit = 50
	maxInboxLimit     = 500
)

// Engine is the part of the scheduler the reminder endpoints drive.
type Engine interface {
	Upcoming() ([]model.UpcomingItem, error)
	Tick(ctx context.Context) scheduler.Result
}

type ReminderHandler struct {
	engine Engine
	inbox  *store.InboxStore
	logger *slog.Logger
}

func NewReminderHandler(engine Engine, inbox *store.InboxStore, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{engine: engine, inbox: inbox, logger: logger}
}

// Upcoming handles GET /api/reminders/upcoming
func (h *ReminderHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	items, err := h.engine.Upcoming()
	if err != nil {
		h.logger.Error("build upcoming schedule", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build schedule")
		return
	}
	if items == nil {
		items = []model.UpcomingItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Tick handles POST /api/reminders/tick
func (h *ReminderHandler) Tick(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Tick(r.Context()))
}

type inboxResponse struct {
	Entries []model.InboxEntry `json:"entries"`
	Unread  int                `json:"unread"`
}

// ListInbox handles GET /api/inbox?limit=N
func (h *ReminderHandler) ListInbox(w http.ResponseWriter, r *http.Request) {
	limit := defaultInboxLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxInboxLimit)
	}

	entries, err := h.inbox.List(limit)
	if err != nil {
		h.logger.Error("list inbox", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list inbox")
		return
	}
	unread, err := h.inbox.UnreadCount()
	if err != nil {
		h.logger.Error("count unread", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list inbox")
		return
	}
	if entries == nil {
		entries = []model.InboxEntry{}
	}
	writeJSON(w, http.StatusOK, inboxResponse{Entries: entries, Unread: unread})
}

// MarkRead handles POST /api/inbox/{id}/read
func (h *ReminderHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.inbox.MarkRead(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "inbox entry not found")
			return
		}
		h.logger.Error("mark inbox read", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update inbox")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
