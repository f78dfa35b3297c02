package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/dukerupert/nestcue/internal/database"
	"github.com/dukerupert/nestcue/internal/logging"
	"github.com/dukerupert/nestcue/internal/observability"
	"github.com/dukerupert/nestcue/internal/push"
	"github.com/dukerupert/nestcue/internal/server"
	"github.com/dukerupert/nestcue/internal/store"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the relay API and the dispatch job",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) pushService() *push.Service {
	return push.NewService(push.Config{
		VAPIDPublicKey:  a.cfg.Push.VAPIDPublicKey,
		VAPIDPrivateKey: a.cfg.Push.VAPIDPrivateKey,
		Subscriber:      a.cfg.Push.Subscriber,
	})
}

func (a *app) serve(parent context.Context) error {
	cfg := a.cfg
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if cfg.Relay.JWTSecret == "" {
		return errors.New("relay.jwt_secret is required")
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, observability.Config{
		ServiceName:    "nestcue-relay",
		ServiceVersion: version,
		Endpoint:       cfg.OTLPEndpoint,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(sctx); err != nil {
			logger.Warn("shutdown tracer", "error", err)
		}
	}()

	db, err := database.Open(cfg.Relay.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	pushStore := store.NewPushStore(db, database.DialectOf(cfg.Relay.DSN))
	pushSvc := a.pushService()
	if !pushSvc.Configured() {
		logger.Warn("VAPID keys not set, dispatch will fail until configured")
	}
	dispatcher := push.NewDispatcher(pushStore, pushSvc, logger)

	srv := server.NewRelay(server.RelayConfig{
		DB:          db,
		Store:       pushStore,
		PushService: pushSvc,
		JWTSecret:   []byte(cfg.Relay.JWTSecret),
		Logger:      logger,
	})

	c := cron.New()
	if _, err := c.AddFunc(cfg.Relay.DispatchSpec, func() { runDispatch(ctx, dispatcher, logger) }); err != nil {
		return err
	}
	if _, err := c.AddFunc("@hourly", srv.RateLimiter().Cleanup); err != nil {
		return err
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	httpServer := &http.Server{
		Addr:              cfg.Relay.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("relay starting", "addr", cfg.Relay.Addr, "dialect", database.DialectOf(cfg.Relay.DSN), "dispatch", cfg.Relay.DispatchSpec)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func runDispatch(ctx context.Context, d *push.Dispatcher, logger *slog.Logger) {
	stats, err := d.Run(ctx, time.Now())
	if err != nil {
		logger.Error("dispatch", "error", err)
		return
	}
	if stats.Sent > 0 || stats.Dropped > 0 || stats.Disabled > 0 || stats.Failed > 0 {
		logger.Info("dispatch", "subscriptions", stats.Subscriptions, "sent", stats.Sent,
			"dropped", stats.Dropped, "failed", stats.Failed, "disabled", stats.Disabled, "pending", stats.Pending)
	}
}
