package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snowduck-labs/snowduck/internal/engine"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := engine.RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build all models, or a selection, in dependency order",
		Long: `Compile every selected model, translate it to the target dialect and
materialize it. Nodes run in dependency order; a failing node never
stops the rest of the run.

Selectors accept model names, tag:NAME, and graph operators:
+name (ancestors), name+ (descendants), +name+ (both).`,
		Example: `  # Build everything
  snowduck run

  # Build one model and its ancestors
  snowduck run --select +fct_orders

  # Build everything tagged daily, except one model
  snowduck run --select tag:daily --exclude stg_abandoned

  # Rebuild incremental models from scratch
  snowduck run --full-refresh`,
		Aliases: []string{"build"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			fmt.Fprintf(cmd.OutOrStdout(), "Found %d models\n", cmdCtx.Loaded.Models)

			summary, err := cmdCtx.Engine.Run(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("run failed: %w", err)
			}

			renderSummary(cmd.OutOrStdout(), summary)
			return summaryError(summary, "model(s)")
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Select, "select", "s", nil, "Nodes to include (name, tag:NAME, +name, name+)")
	cmd.Flags().StringSliceVar(&opts.Exclude, "exclude", nil, "Nodes to drop from the selection")
	cmd.Flags().BoolVar(&opts.FullRefresh, "full-refresh", false, "Rebuild incremental models from scratch")

	return cmd
}
