package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/comigor/booking-go/internal/logger"
	"github.com/comigor/booking-go/internal/mcpserver"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the booking tools over MCP on stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol
			logger.SetOutput(os.Stderr)

			_, manager, err := newBookingService(cmd.Context(), configFrom(cmd))
			if err != nil {
				return err
			}
			s, err := mcpserver.New(manager, version)
			if err != nil {
				return err
			}
			return mcpserver.Serve(s)
		},
	}
}
