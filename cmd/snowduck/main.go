// Command snowduck is the CLI entry point.
package main

import (
	"os"

	"github.com/snowduck-labs/snowduck/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
