package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent runs and their node results",
		Long: `List the most recent runs from the history store. With a run ID,
show that run's per-node results instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			store := cmdCtx.Engine.Store()
			out := cmd.OutOrStdout()

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)

			if len(args) == 1 {
				results, err := store.ResultsForRun(args[0])
				if err != nil {
					return err
				}
				t.AppendHeader(table.Row{"NODE", "STATUS", "TIME", "MESSAGE"})
				for _, r := range results {
					t.AppendRow(table.Row{r.NodeID, string(r.Status), r.ExecutionMS, r.Message})
				}
				t.Render()
				return nil
			}

			runs, err := store.ListRuns(limit)
			if err != nil {
				return err
			}
			t.AppendHeader(table.Row{"RUN", "TARGET", "STATUS", "STARTED", "ERROR"})
			for _, r := range runs {
				t.AppendRow(table.Row{r.ID, r.Target, string(r.Status), r.StartedAt.Format("2006-01-02 15:04:05"), r.Error})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	return cmd
}
