package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/example/event-calendar/internal/application"
	"github.com/example/event-calendar/internal/config"
	"github.com/example/event-calendar/internal/render"
)

func newGridCmd(opts *rootOptions) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Print the month grid of the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger(cmd.ErrOrStderr())
			events, _, closeStore, err := openEventService(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer closeStore()

			grid, err := events.MonthGrid(cmd.Context(), month)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.MonthGrid(grid))
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "Month to show as YYYY-MM (default: current month)")
	return cmd
}

// openEventService opens the configured store behind an EventService that
// arms no notifications.
func openEventService(ctx context.Context, logger *slog.Logger) (*application.EventService, config.Config, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	store, closeStore, err := openStore(ctx, cfg.SQLiteDSN)
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	events := application.NewEventService(newEventRepositoryAdapter(store), nil, newEventID, nil, cfg.Location, logger)
	return events, cfg, closeStore, nil
}
