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

	"github.com/example/event-calendar/internal/config"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the calendar HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger(cmd.OutOrStdout())

			cfg, err := config.Load()
			if err != nil {
				logger.Error("failed to load configuration", "error", err)
				return err
			}
			if port > 0 {
				cfg.HTTPPort = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, nil, logger)
			if err != nil {
				logger.Error("failed to initialise service", "error", err)
				return err
			}
			defer func() {
				if cerr := a.Close(context.Background()); cerr != nil {
					logger.Error("failed to release resources", "error", cerr)
				}
			}()
			a.Start(ctx)

			server := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
				Handler:           a.handler,
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			go func() {
				<-ctx.Done()
				a.hub.Close()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("failed to shutdown server", "error", err)
				}
			}()

			logger.Info("calendar API listening",
				"addr", server.Addr,
				"timezone", cfg.Timezone,
				"reschedule_policy", cfg.ReschedulePolicy,
				"store", storeKind(cfg.SQLiteDSN),
				"basic_auth", cfg.BasicAuthEnabled(),
			)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server encountered error", "error", err)
				return err
			}
			logger.Info("calendar API stopped")
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Override CALENDAR_HTTP_PORT")
	return cmd
}

func storeKind(dsn string) string {
	if dsn == "" {
		return "memory"
	}
	return "sqlite"
}
