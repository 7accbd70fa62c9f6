package main

import (
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/comigor/booking-go/internal/agent"
	"github.com/comigor/booking-go/internal/chat"
	"github.com/comigor/booking-go/internal/history"
	"github.com/comigor/booking-go/internal/llm"
	"github.com/comigor/booking-go/internal/logger"
)

func newChatCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)
			logger.SetOutput(os.Stderr)

			_, manager, err := newBookingService(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			store := history.Open(cfg.History.Path)
			defer store.Close()

			a := agent.New(llm.NewClient(cfg.LLM), *cfg, manager, store)

			in, err := chat.NewReadline(cfg.Chat)
			if err != nil {
				return err
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			return chat.NewLoop(in, cmd.OutOrStdout(), a, cfg.Chat, sessionID).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "resume the conversation with this session id")
	return cmd
}
