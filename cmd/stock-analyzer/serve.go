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

	"stock-analyzer/internal/api"
	"stock-analyzer/observability"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Long:  `Runs the same routes and handlers as the desktop app, without the window.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, application, err := setup()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.HTTP.Port = port
			}

			ctx := context.Background()
			application.Startup(ctx)

			handler := api.NewHandler(application, cfg)
			server := &http.Server{
				Addr:         ":" + cfg.HTTP.Port,
				Handler:      api.NewRouter(handler, cfg),
				ReadTimeout:  30 * time.Second,
				WriteTimeout: time.Duration(cfg.Analysis.TimeoutSeconds+10) * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				observability.Info("starting HTTP server", "port", cfg.HTTP.Port, "url", fmt.Sprintf("http://localhost:%s", cfg.HTTP.Port))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			// Wait for interrupt signal
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-quit:
			case err := <-errCh:
				return fmt.Errorf("server error: %w", err)
			}

			observability.Info("shutting down HTTP server...")

			// Graceful shutdown with timeout
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}

			application.Shutdown(shutdownCtx)
			observability.Info("HTTP server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides HTTP_PORT)")
	return cmd
}
