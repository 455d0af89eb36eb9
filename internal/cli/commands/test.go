package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTestCommand creates the test command.
func NewTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Run data tests against built relations",
		Long: `Execute every schema and singular test. A test query selects its
violating rows: zero rows back is a pass. Tests with severity warn are
reported but never fail the command.`,
		Example: `  # Run all tests
  snowduck test`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			fmt.Fprintf(cmd.OutOrStdout(), "Found %d tests\n", cmdCtx.Loaded.Tests)

			summary, err := cmdCtx.Engine.RunTests(cmd.Context())
			if err != nil {
				return fmt.Errorf("tests failed to run: %w", err)
			}

			renderSummary(cmd.OutOrStdout(), summary)
			return summaryError(summary, "test(s)")
		},
	}
}
