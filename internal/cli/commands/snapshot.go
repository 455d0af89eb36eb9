package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSnapshotCommand creates the snapshot command.
func NewSnapshotCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot [name...]",
		Short: "Capture type-2 history for snapshot definitions",
		Long: `Run every snapshot, or the named ones. The first run creates the
snapshot table; later runs close changed versions and insert the new
open ones.`,
		Example: `  # Run all snapshots
  snowduck snapshot

  # Run one snapshot
  snowduck snapshot customers_snapshot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := cmdCtx.Engine.RunSnapshots(cmd.Context(), args)
			if err != nil {
				return fmt.Errorf("snapshot run failed: %w", err)
			}

			renderSummary(cmd.OutOrStdout(), summary)
			return summaryError(summary, "snapshot(s)")
		},
	}
}
