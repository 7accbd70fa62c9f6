package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comigor/booking-go/internal/booking"
	"github.com/comigor/booking-go/internal/calendar"
	"github.com/comigor/booking-go/internal/config"
	"github.com/comigor/booking-go/internal/logger"
	"github.com/comigor/booking-go/internal/metrics"
	"github.com/comigor/booking-go/pkg/tools"
)

type cfgKey struct{}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "salon",
		Short: "Booking assistant for Daisy Hair Salon",
		Long: `salon is a conversational booking assistant. A language model talks to
the customer and books, lists and cancels appointments on the salon's
Google Calendar.

It can run as:
  - An interactive terminal chat (chat)
  - An HTTP service (serve)
  - An MCP server exposing the booking tools (mcp)`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			logger.SetLevel(cfg.Log.Level)
			cmd.SetContext(context.WithValue(cmd.Context(), cfgKey{}, cfg))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newChatCmd(), newServeCmd(), newMCPCmd(), newSlotsCmd(), newAuthCmd())
	return root
}

func configFrom(cmd *cobra.Command) *config.Config {
	return cmd.Context().Value(cfgKey{}).(*config.Config)
}

// newBookingService wires the Google calendar into the booking service and
// the salon tools.
func newBookingService(ctx context.Context, cfg *config.Config) (*booking.Service, *tools.Manager, error) {
	metrics.Register()

	hours, err := booking.HoursFromConfig(cfg.Salon)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid salon hours: %w", err)
	}
	cal, err := calendar.NewFromConfig(ctx, cfg.Calendar, hours.Location)
	if err != nil {
		return nil, nil, err
	}
	svc := booking.NewService(cal, hours, booking.WithTimeout(cfg.Calendar.Timeout))
	return svc, tools.NewManager(tools.SalonTools(svc)...), nil
}
