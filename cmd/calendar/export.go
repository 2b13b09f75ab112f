package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/event-calendar/internal/ics"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every stored event as iCalendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger(cmd.ErrOrStderr())
			events, cfg, closeStore, err := openEventService(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer closeStore()

			list, err := events.List(cmd.Context())
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			if err := ics.Export(w, list, cfg.Location, time.Now()); err != nil {
				return err
			}
			if out != "" {
				logger.Info("calendar exported", "path", out, "events", len(list))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to this file instead of stdout")
	return cmd
}
