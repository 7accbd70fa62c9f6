package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/comigor/booking-go/internal/agent"
	"github.com/comigor/booking-go/internal/history"
	"github.com/comigor/booking-go/internal/llm"
	"github.com/comigor/booking-go/internal/logger"
	"github.com/comigor/booking-go/internal/metrics"
)

const (
	sessionHeader  = "X-Session-ID"
	maxRequestBody = 64 << 10
)

type processor interface {
	Process(ctx context.Context, sessionID, input string) (string, error)
}

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the assistant over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)
			if addr == "" {
				addr = fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
			}

			_, manager, err := newBookingService(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			store := history.Open(cfg.History.Path)
			defer store.Close()

			a := agent.New(llm.NewClient(cfg.LLM), *cfg, manager, store)
			srv := &http.Server{
				Addr:              addr,
				Handler:           newMux(a),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.L.Info("starting server", "address", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-cmd.Context().Done():
				logger.L.Info("shutting down server")
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.host:server.port)")
	return cmd
}

func newMux(a processor) *http.ServeMux {
	mux := http.NewServeMux()

	// main inference endpoint
	mux.HandleFunc("POST /", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
		if err != nil {
			logger.L.Error("read body error", "err", err)
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		input := strings.TrimSpace(string(body))
		if input == "" {
			http.Error(w, "empty message", http.StatusBadRequest)
			return
		}

		sessionID := r.Header.Get(sessionHeader)
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		w.Header().Set(sessionHeader, sessionID)
		logger.L.Info("inference request", "session", sessionID)

		response, err := a.Process(r.Context(), sessionID, input)
		if err != nil {
			logger.L.Error("process error", "err", err, "session", sessionID)
			status := http.StatusInternalServerError
			if errors.Is(err, agent.ErrLLMTimeout) {
				status = http.StatusGatewayTimeout
			}
			http.Error(w, "failed to process request", status)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(response))
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	return mux
}
