package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/dukerupert/nestcue/internal/config"
	"github.com/dukerupert/nestcue/internal/ledger"
	"github.com/dukerupert/nestcue/internal/store"
)

const deviceIDKey = "nestcue.device-id"

type app struct {
	cfgFile string
	cfg     config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "nestcue",
		Short:         "Smart reminder agent",
		Long:          `nestcue watches tracked supplements, work, moods and plans and fires one well-timed reminder at a time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (YAML)")

	root.AddCommand(a.serveCmd(), a.scheduleCmd(), vapidKeysCmd())
	return root
}

// storage picks Redis when configured, else the SQLite kv table.
func (a *app) storage(ctx context.Context, db *sql.DB, logger *slog.Logger) (ledger.Storage, func(), error) {
	if a.cfg.Redis.Addr == "" {
		return store.NewKVStore(db), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: a.cfg.Redis.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", a.cfg.Redis.Addr, err)
	}
	logger.Info("using redis for ledger", "addr", a.cfg.Redis.Addr)
	return store.NewRedisKV(client, a.cfg.Redis.Prefix), func() { client.Close() }, nil
}

// deviceID returns the configured device id, or a generated one persisted
// in storage.
func (a *app) deviceID(kv ledger.Storage) (string, error) {
	if a.cfg.Agent.DeviceID != "" {
		return a.cfg.Agent.DeviceID, nil
	}
	raw, err := kv.Get(deviceIDKey)
	if err != nil {
		return "", fmt.Errorf("load device id: %w", err)
	}
	if len(raw) > 0 {
		return string(raw), nil
	}
	id := uuid.NewString()
	if err := kv.Set(deviceIDKey, []byte(id)); err != nil {
		return "", fmt.Errorf("save device id: %w", err)
	}
	return id, nil
}
