package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewDocsCommand creates the docs command.
func NewDocsCommand() *cobra.Command {
	var outPath string

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Write the docs manifest as JSON",
		Long: `Export every model, source, seed, snapshot and test with its resolved
metadata to a JSON manifest for an external docs viewer.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if outPath == "-" {
				return cmdCtx.Engine.WriteManifest(cmd.OutOrStdout())
			}

			if dir := filepath.Dir(outPath); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o750); err != nil {
					return fmt.Errorf("failed to create docs directory: %w", err)
				}
			}
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create manifest: %w", err)
			}
			defer f.Close()

			if err := cmdCtx.Engine.WriteManifest(f); err != nil {
				return err
			}
			cmd.Printf("Wrote %s\n", outPath)
			return nil
		},
	}
	generate.Flags().StringVarP(&outPath, "output", "o", filepath.Join("target", "manifest.json"),
		"Manifest path, or - for stdout")

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Project documentation",
	}
	cmd.AddCommand(generate)
	return cmd
}
