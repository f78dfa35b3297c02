package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dukerupert/nestcue/internal/handler"
	"github.com/dukerupert/nestcue/internal/middleware"
	"github.com/dukerupert/nestcue/internal/push"
)

// Schedule uploads allowed per user per minute.
const relayUploadLimit = 30

type RelayConfig struct {
	DB          *sql.DB
	Store       handler.RelayStore
	PushService *push.Service
	JWTSecret   []byte
	Logger      *slog.Logger
}

// Relay is the push relay's HTTP API.
type Relay struct {
	db          *sql.DB
	relayH      *handler.RelayHandler
	jwtSecret   []byte
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func NewRelay(cfg RelayConfig) *Relay {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		db:          cfg.DB,
		relayH:      handler.NewRelayHandler(cfg.Store, cfg.PushService, logger.With("component", "relay_handler")),
		jwtSecret:   cfg.JWTSecret,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the upload limiter for periodic cleanup.
func (s *Relay) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Relay) Router() http.Handler {
	outerMux := http.NewServeMux()
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /metrics", promhttp.Handler())
	outerMux.HandleFunc("GET /api/push/vapid-key", s.relayH.VAPIDKey)

	protectedMux := http.NewServeMux()
	limit := middleware.RateLimit(s.rateLimiter, middleware.UserOrIP, relayUploadLimit, time.Minute)
	protectedMux.HandleFunc("POST /api/push/subscribe", s.relayH.Subscribe)
	protectedMux.Handle("PUT /api/push/reminders", limit(http.HandlerFunc(s.relayH.PutReminders)))

	outerMux.Handle("/api/", middleware.RequireBearer(s.jwtSecret)(protectedMux))

	logged := middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
	return otelhttp.NewHandler(logged, "relay")
}

func (s *Relay) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	status := "ok"
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		status = "degraded"
	}
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}
