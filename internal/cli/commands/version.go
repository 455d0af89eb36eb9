package commands

import (
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the snowduck version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("snowduck %s\n", version)
		},
	}
}
