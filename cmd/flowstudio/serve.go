package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/flowstudio"
	"github.com/aretw0/flowstudio/internal/cli"
	"github.com/aretw0/flowstudio/internal/presentation/tui"
	httpAdapter "github.com/aretw0/flowstudio/pkg/adapters/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the editor HTTP API",
	Long: `Serves validation, cloning, layout, templates and the config store over HTTP
for the browser editor. Config changes are streamed on /events.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()
		if cmd.Flags().Changed("addr") {
			a.cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
		}

		tui.PrintBanner(os.Stderr, strings.TrimSpace(flowstudio.Version))

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		server := httpAdapter.NewServer(a.studio)
		if a.backend.Watchable != nil {
			go func() {
				if err := server.WatchStore(ctx, a.backend.Watchable); err != nil {
					a.logger.Error("store watch failed", "err", err)
				}
			}()
		}

		srv := &http.Server{
			Addr:              a.cfg.HTTP.Addr,
			Handler:           server.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			a.logger.Info("starting flowstudio server", "addr", srv.Addr, "store", a.cfg.Store.Kind)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			a.logger.Info("shutting down", "signal", ctx.Signal())

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("graceful shutdown did not complete", "err", err)
				return srv.Close()
			}
			a.logger.Info("flowstudio server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (overrides settings)")
}
