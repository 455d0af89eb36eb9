package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/snowduck-labs/snowduck/pkg/core"
)

// renderSummary prints one row per node result plus a totals line.
func renderSummary(w io.Writer, summary *core.RunSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"NODE", "STATUS", "TIME", "MESSAGE"})

	for _, r := range summary.Results {
		t.AppendRow(table.Row{
			r.NodeID,
			string(r.Status),
			(time.Duration(r.ExecutionMS) * time.Millisecond).String(),
			r.Message,
		})
	}
	t.Render()

	succeeded, errored, skipped := summary.Counts()
	fmt.Fprintf(w, "Done. succeeded=%d errored=%d skipped=%d\n", succeeded, errored, skipped)
}

// summaryError returns a non-nil error when any node errored, so the
// process exits non-zero after the summary has been printed.
func summaryError(summary *core.RunSummary, what string) error {
	_, errored, _ := summary.Counts()
	if errored > 0 {
		return fmt.Errorf("%d %s failed", errored, what)
	}
	return nil
}
