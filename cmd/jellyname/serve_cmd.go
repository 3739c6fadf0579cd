package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/jellyname/internal/api"
	"github.com/Nomadcxx/jellyname/internal/library"
	"github.com/Nomadcxx/jellyname/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP API server for external integrations.

Endpoints:
  GET  /health
  POST /api/v1/parse       POST /api/v1/classify
  POST /api/v1/rank        POST /api/v1/suggest
  POST /api/v1/scan        GET  /api/v1/mismatches
  GET  /api/v1/rejected    GET  /api/v1/runs

Examples:
  jellyname serve                       # Listen on api.addr
  jellyname serve --addr 0.0.0.0:9000   # Listen on port 9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.API.Addr
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			kw := a.naming.Keywords()
			scanner, err := library.NewScanner(a.naming.Selector(), &kw,
				library.WithWorkers(a.cfg.Scan.Workers),
				library.WithLogger(a.logger))
			if err != nil {
				return err
			}

			server := api.NewServer(a.naming,
				api.WithScanner(scanner),
				api.WithRoots(a.cfg.Scan.Roots),
				api.WithDatabase(db),
				api.WithToken(a.cfg.API.Token),
				api.WithCORSOrigins(a.cfg.API.CORSOrigins),
				api.WithLogger(a.logger))
			if !server.AuthEnabled() {
				a.logger.Warn("api", "API token not set, authentication disabled")
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           server.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("api", "Starting API server", logging.F("addr", addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()
			if !a.jsonOut {
				a.printer(cmd).InfoMsg("Listening on %s, Ctrl+C to stop", addr)
			}

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("api server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			a.logger.Info("api", "Shutting down API server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on (default: api.addr)")
	return cmd
}
