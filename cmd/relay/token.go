package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/nestcue/internal/auth"
)

const version = "0.1.0"

func (a *app) tokenCmd() *cobra.Command {
	var (
		userID   string
		deviceID string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			tok, err := auth.IssueToken([]byte(a.cfg.Relay.JWTSecret), userID, deviceID, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (token subject)")
	cmd.Flags().StringVar(&deviceID, "device", "", "optional device id claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime, 0 for no expiry")
	return cmd
}
