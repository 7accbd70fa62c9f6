package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comigor/booking-go/internal/availability"
)

func newSlotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slots",
		Short: "Print the free slots for the rest of the week",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newBookingService(cmd.Context(), configFrom(cmd))
			if err != nil {
				return err
			}
			week, err := svc.Availability(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), availability.Format(week))
			return nil
		},
	}
}
