package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	var fullRefresh bool

	cmd := &cobra.Command{
		Use:   "compile [model...]",
		Short: "Print compiled, translated SQL without executing it",
		Long: `Resolve templates and translate the result to the target dialect,
printing the SQL that run would execute. With no arguments, every model
is compiled.`,
		Example: `  # Preview one model
  snowduck compile fct_orders

  # Preview the full-refresh variant of an incremental model
  snowduck compile fct_orders --full-refresh`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			names := args
			if len(names) == 0 {
				for _, m := range cmdCtx.Engine.Catalog().Models() {
					names = append(names, m.Name)
				}
			}

			out := cmd.OutOrStdout()
			for i, name := range names {
				sql, err := cmdCtx.Engine.CompileModel(name, fullRefresh)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				if len(names) > 1 {
					fmt.Fprintf(out, "-- %s\n", name)
				}
				fmt.Fprintln(out, sql)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fullRefresh, "full-refresh", false, "Compile as if running with --full-refresh")
	return cmd
}
