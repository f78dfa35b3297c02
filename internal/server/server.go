// Package server builds the HTTP routers for the agent and the relay.
package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukerupert/nestcue/internal/database"
	"github.com/dukerupert/nestcue/internal/events"
	"github.com/dukerupert/nestcue/internal/handler"
	"github.com/dukerupert/nestcue/internal/middleware"
	"github.com/dukerupert/nestcue/internal/push"
	"github.com/dukerupert/nestcue/internal/scheduler"
	"github.com/dukerupert/nestcue/internal/store"
	ws "github.com/dukerupert/nestcue/internal/websocket"
)

// Config wires the agent's local API. Scheduler, DB, Hub and Bus are required.
type Config struct {
	DB             *sql.DB
	Scheduler      *scheduler.Scheduler
	Remote         handler.RemoteDisabler
	Relay          handler.RelaySubscriber
	Hub            *ws.Hub
	Bus            *events.Bus
	PushService    *push.Service
	Location       *time.Location
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Server is the agent's local HTTP API.
type Server struct {
	db             *sql.DB
	hub            *ws.Hub
	reminderH      *handler.ReminderHandler
	preferencesH   *handler.PreferencesHandler
	stateH         *handler.StateHandler
	pushH          *handler.PushHandler
	allowedOrigins []string
	logger         *slog.Logger
}

func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	settingsStore := store.NewSettingsStore(cfg.DB)
	inboxStore := store.NewInboxStore(cfg.DB)
	stateStore := store.NewStateStore(cfg.DB)
	pushStore := store.NewPushStore(cfg.DB, database.SQLite)

	return &Server{
		db:             cfg.DB,
		hub:            cfg.Hub,
		reminderH:      handler.NewReminderHandler(cfg.Scheduler, inboxStore, logger.With("component", "reminder_handler")),
		preferencesH:   handler.NewPreferencesHandler(settingsStore, cfg.Scheduler, cfg.Remote, cfg.Bus, logger.With("component", "preferences_handler")),
		stateH:         handler.NewStateHandler(stateStore, cfg.Bus, cfg.Location, logger.With("component", "state_handler")),
		pushH:          handler.NewPushHandler(pushStore, settingsStore, cfg.PushService, cfg.Relay, logger.With("component", "push_handler")),
		allowedOrigins: cfg.AllowedOrigins,
		logger:         logger,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.allowedOrigins))

	mux.HandleFunc("GET /api/reminders/upcoming", s.reminderH.Upcoming)
	mux.HandleFunc("POST /api/reminders/tick", s.reminderH.Tick)
	mux.HandleFunc("GET /api/inbox", s.reminderH.ListInbox)
	mux.HandleFunc("POST /api/inbox/{id}/read", s.reminderH.MarkRead)

	mux.HandleFunc("GET /api/preferences", s.preferencesH.Get)
	mux.HandleFunc("PUT /api/preferences", s.preferencesH.Update)

	mux.HandleFunc("GET /api/state", s.stateH.Snapshot)
	mux.HandleFunc("PUT /api/supplements/{id}", s.stateH.PutSupplement)
	mux.HandleFunc("DELETE /api/supplements/{id}", s.stateH.DeleteSupplement)
	mux.HandleFunc("POST /api/doses", s.stateH.SetDose)
	mux.HandleFunc("PUT /api/attendance/{date}", s.stateH.PutAttendance)
	mux.HandleFunc("DELETE /api/attendance/{date}", s.stateH.DeleteAttendance)
	mux.HandleFunc("GET /api/moods", s.stateH.ListMoods)
	mux.HandleFunc("POST /api/moods", s.stateH.AddMood)
	mux.HandleFunc("PUT /api/planner/{date}/{id}", s.stateH.PutPlan)
	mux.HandleFunc("DELETE /api/planner/{date}/{id}", s.stateH.DeletePlan)

	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	status := "ok"
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		status = "degraded"
	}
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}
