package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/nestcue/internal/database"
	"github.com/dukerupert/nestcue/internal/logging"
	"github.com/dukerupert/nestcue/internal/push"
	"github.com/dukerupert/nestcue/internal/store"
)

func (a *app) dispatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch",
		Short: "Run one dispatch pass and print its stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.Setup(a.cfg.LogLevel, a.cfg.LogFormat)

			db, err := database.Open(a.cfg.Relay.DSN)
			if err != nil {
				return err
			}
			defer db.Close()

			pushStore := store.NewPushStore(db, database.DialectOf(a.cfg.Relay.DSN))
			stats, err := push.NewDispatcher(pushStore, a.pushService(), logger).Run(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(stats)
		},
	}
}
