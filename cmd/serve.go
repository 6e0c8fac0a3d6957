package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/lehigh-university-libraries/recordmatcher/internal/catalog"
	"github.com/lehigh-university-libraries/recordmatcher/internal/config"
	"github.com/lehigh-university-libraries/recordmatcher/internal/handlers"
	"github.com/lehigh-university-libraries/recordmatcher/internal/matchcmd"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP matching API",
		Long: `Starts the Recordmatcher HTTP API on the specified port.

POST a MARC-in-JSON record to /api/match?preset=CONTENT to run a job; results
are kept in memory and listed under /api/jobs.`,
		Example: `  # Start server on the port from RECORDMATCHER_PORT (default 8888)
  recordmatcher serve

  # Start server on custom port
  recordmatcher serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			client := catalog.NewClient(cfg.SRUURL, catalog.WithTimeout(cfg.SRUTimeout))
			handler := handlers.New(client, matchcmd.OptionsFromConfig(cfg), slog.Default())

			addr := ":" + strconv.Itoa(cfg.Port)
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Recordmatcher API available", "addr", addr, "sru_url", cfg.SRUURL)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8888, "Port to listen on")

	return cmd
}
