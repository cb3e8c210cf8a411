// Package cmd wires the archlint CLI: scan, snapshot, and diff subcommands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/archlint/archlint/internal/archerr"
	"github.com/archlint/archlint/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "archlint",
	Short: "Architectural smell detector for TypeScript/JavaScript projects",
	Long: `archlint scans a project, builds its dependency graph, and reports
architectural problems: circular dependencies, dead code, god modules,
complexity hotspots, layer violations, duplicated code, and more.

Snapshots capture a run with stable smell identities; diffing two snapshots
classifies the changes into regressions and improvements for CI gates.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if cmd != nil && !cmd.Flags().Parsed() {
			return archerr.ExitInvalid
		}
		return archerr.ExitCodeFor(err)
	}
	return exitCode
}

// exitCode lets subcommands signal a non-error gate failure (exit 1) without
// surfacing an error message.
var exitCode int
