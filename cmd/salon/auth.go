package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comigor/booking-go/internal/calendar"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to the salon's Google Calendar",
		Long: `auth runs the OAuth consent flow for the client secrets in
calendar.credentials_file and stores the token in calendar.token_file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)
			conf, err := calendar.LoadOAuthConfig(cfg.Calendar.CredentialsFile)
			if err != nil {
				return err
			}
			store := calendar.NewTokenStore(cfg.Calendar.TokenFile)
			if err := calendar.Authorize(cmd.Context(), conf, store, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", cfg.Calendar.TokenFile)
			return nil
		},
	}
}
