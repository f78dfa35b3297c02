package main

import (
	"github.com/spf13/cobra"

	"github.com/dukerupert/nestcue/internal/config"
)

type app struct {
	cfgFile string
	cfg     config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "relay",
		Short:         "nestcue push relay",
		Long:          `relay stores device schedules uploaded by nestcue agents and delivers due reminders with Web Push.`,
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

	root.AddCommand(a.serveCmd(), a.dispatchCmd(), a.tokenCmd())
	return root
}
