package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/nestcue/internal/events"
	"github.com/dukerupert/nestcue/internal/model"
	"github.com/dukerupert/nestcue/internal/store"
)

// PreferenceListener is told when preferences are saved.
type PreferenceListener interface {
	OnPreferencesChanged(ctx context.Context, prefs model.Preferences)
}

// RemoteDisabler clears the relay copy of the schedule.
type RemoteDisabler interface {
	Disable(ctx context.Context) error
}

type PreferencesHandler struct {
	settings *store.SettingsStore
	listener PreferenceListener
	remote   RemoteDisabler
	bus      *events.Bus
	logger   *slog.Logger
}

func NewPreferencesHandler(ss *store.SettingsStore, listener PreferenceListener, remote RemoteDisabler, bus *events.Bus, logger *slog.Logger) *PreferencesHandler {
	return &PreferencesHandler{settings: ss, listener: listener, remote: remote, bus: bus, logger: logger}
}

// Get handles GET /api/preferences
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.settings.GetPreferences()
	if err != nil {
		h.logger.Error("get preferences", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// Update handles PUT /api/preferences
func (h *PreferencesHandler) Update(w http.ResponseWriter, r *http.Request) {
	prefs := model.DefaultPreferences()
	if err := decodeJSON(w, r, &prefs); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validatePreferences(prefs); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.settings.SetPreferences(prefs); err != nil {
		h.logger.Error("save preferences", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}

	if h.listener != nil {
		h.listener.OnPreferencesChanged(r.Context(), prefs)
	}
	if !prefs.NotificationsEnabled && h.remote != nil {
		if err := h.remote.Disable(r.Context()); err != nil {
			h.logger.Warn("clear relay schedule", "error", err)
		}
	}
	h.bus.Publish(events.Event{Kind: events.PreferencesChanged, Data: prefs})

	writeJSON(w, http.StatusOK, prefs)
}

func validatePreferences(p model.Preferences) error {
	if !p.QuietHours.Enabled {
		return nil
	}
	if !timeFormatRegexp.MatchString(p.QuietHours.Start) {
		return errors.New("quietHours.start must be HH:MM")
	}
	if !timeFormatRegexp.MatchString(p.QuietHours.End) {
		return errors.New("quietHours.end must be HH:MM")
	}
	return nil
}
