package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/nestcue/internal/content"
	"github.com/dukerupert/nestcue/internal/database"
	"github.com/dukerupert/nestcue/internal/reminder"
	"github.com/dukerupert/nestcue/internal/store"
)

func (a *app) scheduleCmd() *cobra.Command {
	var hash bool
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the upcoming reminder schedule as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := a.cfg.Location()
			if err != nil {
				return err
			}
			db, err := database.Open(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			snap, err := store.NewStateStore(db).Snapshot()
			if err != nil {
				return err
			}
			items := reminder.BuildSchedule(snap, content.Default(a.cfg.Agent.Locale), a.cfg.Priorities, time.Now().In(loc))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if hash {
				return enc.Encode(map[string]any{"hash": reminder.ScheduleHash(items), "items": items})
			}
			return enc.Encode(items)
		},
	}
	cmd.Flags().BoolVar(&hash, "hash", false, "include the schedule content hash")
	return cmd
}

