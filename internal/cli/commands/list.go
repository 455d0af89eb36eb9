package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/snowduck-labs/snowduck/internal/compile"
)

// NewListCommand creates the ls command.
func NewListCommand() *cobra.Command {
	var selector []string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List project nodes",
		Long: `List every model with its materialization, tags and dependencies,
followed by the other node kinds. --select narrows the model list with
the same selectors run accepts.`,
		Example: `  # List everything
  snowduck ls

  # List one model's ancestors
  snowduck ls --select +fct_orders`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			eng := cmdCtx.Engine

			// Materialization and tags come from config() calls, so
			// resolve them before listing.
			for _, m := range eng.Catalog().Models() {
				_, _ = eng.CompileModel(m.Name, false)
			}

			graph := eng.BuildGraph()

			names := graph.SelectAll()
			if len(selector) > 0 {
				names = graph.Select(selector, nil)
			}
			selected := make(map[string]bool, len(names))
			for _, n := range names {
				selected[n] = true
			}

			out := cmd.OutOrStdout()
			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"MODEL", "MATERIALIZED", "TAGS", "DEPENDS ON"})

			for _, m := range eng.Catalog().Models() {
				if !selected[m.Name] {
					continue
				}
				t.AppendRow(table.Row{
					m.Name,
					m.Materialized.String(),
					strings.Join(m.Tags, ", "),
					strings.Join(compile.ExtractRefs(m.RawSQL), ", "),
				})
			}
			t.Render()

			for _, s := range eng.Catalog().Sources() {
				for i := range s.Tables {
					cmd.Printf("source: %s.%s -> %s\n", s.Name, s.Tables[i].Name, s.RelationName(&s.Tables[i]))
				}
			}
			for _, s := range eng.Catalog().Seeds() {
				cmd.Printf("seed: %s -> %s\n", s.Name, s.RelationName())
			}
			for _, s := range eng.Catalog().Snapshots() {
				cmd.Printf("snapshot: %s (%s) -> %s\n", s.Name, s.Strategy, s.RelationName())
			}
			for _, tt := range eng.Catalog().Tests() {
				cmd.Printf("test: %s [%s]\n", tt.Name, tt.Severity)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&selector, "select", "s", nil, "Narrow the model list (name, tag:NAME, +name, name+)")
	return cmd
}
