package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/fokus/internal/export"
)

func newExportCmd(opts *options) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks and session history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			s, ts, err := opts.openTasks(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			now := time.Now()
			sessions, err := s.ListPhases(time.Time{}, now.Add(time.Minute))
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}

			path := output
			if path == "" {
				path = export.DefaultFilename(f, now)
			}
			if err := export.Write(f, ts.List(), sessions, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.CSV), "csv, json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default fokus-export-<timestamp>.<format>)")
	return cmd
}
