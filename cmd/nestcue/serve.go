package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/nestcue/internal/cloudsync"
	"github.com/dukerupert/nestcue/internal/content"
	"github.com/dukerupert/nestcue/internal/database"
	"github.com/dukerupert/nestcue/internal/events"
	"github.com/dukerupert/nestcue/internal/ledger"
	"github.com/dukerupert/nestcue/internal/logging"
	"github.com/dukerupert/nestcue/internal/push"
	"github.com/dukerupert/nestcue/internal/reminder"
	"github.com/dukerupert/nestcue/internal/scheduler"
	"github.com/dukerupert/nestcue/internal/server"
	"github.com/dukerupert/nestcue/internal/store"
	ws "github.com/dukerupert/nestcue/internal/websocket"
)

const (
	inboxRetention = 30 * 24 * time.Hour
	doseRetention  = 60 * 24 * time.Hour
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the reminder scheduler and the local API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	cfg := a.cfg
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	kv, closeKV, err := a.storage(ctx, db, logger)
	if err != nil {
		return err
	}
	defer closeKV()

	deviceID, err := a.deviceID(kv)
	if err != nil {
		return err
	}

	bus := events.NewBus()
	hub := ws.NewHub(logger)
	detach := hub.Attach(bus)
	defer detach()

	pushSvc := push.NewService(push.Config{
		VAPIDPublicKey:  cfg.Push.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.Push.VAPIDPrivateKey,
		Subscriber:      cfg.Push.Subscriber,
	})
	var primary scheduler.Notifier
	if pushSvc.Configured() {
		primary = push.NewNotifier(pushSvc, store.NewPushStore(db, database.SQLite), logger)
	} else {
		logger.Info("VAPID keys not set, web push disabled")
	}

	relay := cloudsync.NewClient(cloudsync.Config{
		BaseURL:  cfg.Relay.URL,
		Token:    cfg.Relay.Token,
		DeviceID: deviceID,
	})
	syncer := cloudsync.NewSyncer(relay, kv, bus, logger)
	defer syncer.Wait()

	settingsStore := store.NewSettingsStore(db)
	prefs, err := settingsStore.GetPreferences()
	if err != nil {
		return err
	}

	stateStore := store.NewStateStore(db)
	inboxStore := store.NewInboxStore(db)

	sched := scheduler.New(scheduler.Config{
		State:            stateStore,
		Builder:          reminder.NewBuilder(content.Default(cfg.Agent.Locale), cfg.Priorities),
		Ledger:           ledger.New(kv),
		Inbox:            inboxStore,
		Primary:          primary,
		Fallback:         hub,
		Syncer:           syncer,
		Bus:              bus,
		Logger:           logger,
		Preferences:      prefs,
		Interval:         cfg.Agent.TickInterval,
		MarkFailedAsSent: cfg.Agent.MarkFailedAsSent,
	}).WithClock(func() time.Time { return time.Now().In(loc) })

	srv := server.New(server.Config{
		DB:             db,
		Scheduler:      sched,
		Remote:         syncer,
		Relay:          relay,
		Hub:            hub,
		Bus:            bus,
		PushService:    pushSvc,
		Location:       loc,
		AllowedOrigins: cfg.Agent.AllowedOrigins,
		Logger:         logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.Agent.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	sched.Start(ctx)
	go housekeeping(ctx, inboxStore, stateStore, logger.With("component", "housekeeping"))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("nestcue agent starting", "addr", cfg.Agent.Addr, "device_id", deviceID, "relay", relay.HasSession())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			sched.Stop()
			return err
		}
	}

	logger.Info("shutting down")
	sched.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// housekeeping trims old inbox entries and dose marks once an hour.
func housekeeping(ctx context.Context, inbox *store.InboxStore, state *store.StateStore, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			if n, err := inbox.Prune(now.Add(-inboxRetention)); err != nil {
				logger.Error("prune inbox", "error", err)
			} else if n > 0 {
				logger.Info("pruned inbox", "count", n)
			}
			if n, err := state.PruneDoses(now.Add(-doseRetention)); err != nil {
				logger.Error("prune doses", "error", err)
			} else if n > 0 {
				logger.Info("pruned doses", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
