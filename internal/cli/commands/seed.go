package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snowduck-labs/snowduck/internal/engine"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	var direct bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load CSV seed files into the warehouse",
		Long: `Load every CSV file in the seeds directory as a table, replacing any
previous contents. Column types are inferred from a sample of rows;
with --direct the backend's own CSV reader does the parsing and typing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			fmt.Fprintf(cmd.OutOrStdout(), "Found %d seeds\n", cmdCtx.Loaded.Seeds)

			summary, err := cmdCtx.Engine.LoadSeeds(cmd.Context(), engine.SeedOptions{Direct: direct})
			if err != nil {
				return fmt.Errorf("seed load failed: %w", err)
			}

			renderSummary(cmd.OutOrStdout(), summary)
			return summaryError(summary, "seed(s)")
		},
	}

	cmd.Flags().BoolVar(&direct, "direct", false,
		"Load through the backend's native CSV reader, skipping type inference")
	return cmd
}
