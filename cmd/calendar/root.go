package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/example/event-calendar/internal/logging"
)

type rootOptions struct {
	verbose bool
}

func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return logging.New(w, level)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "calendar",
		Short:         "Event calendar with date-time notifications",
		Long:          "calendar stores date-bound events, lays them out as a month grid and raises a notification when an event's date and time arrive.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newGridCmd(opts))
	cmd.AddCommand(newExportCmd(opts))
	cmd.AddCommand(newHashPasswordCmd())
	return cmd
}

func Execute() error {
	return newRootCmd().Execute()
}
