package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/engine"
	"github.com/archlint/archlint/internal/projectroot"
	"github.com/archlint/archlint/internal/snapshot"
	"github.com/archlint/archlint/internal/version"
)

var (
	snapshotOutput        string
	snapshotProjectPath   string
	snapshotIncludeCommit bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Analyze the project and write a snapshot file",
	Long: `Snapshot runs a full analysis and writes the result with stable smell
IDs, suitable as a baseline for diff.

Example:
  archlint snapshot -o baseline.json --include-commit`,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	flags := snapshotCmd.Flags()
	flags.StringVarP(&snapshotOutput, "output", "o", "archlint-snapshot.json", "Output file")
	flags.StringVarP(&snapshotProjectPath, "project", "p", ".", "Project path")
	flags.BoolVar(&snapshotIncludeCommit, "include-commit", false, "Record the current git commit")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	settings := config.DefaultSettings()
	settings.ConfigureLogger()

	root := projectroot.Detect(snapshotProjectPath)
	snap, err := analyzeToSnapshot(root, snapshotIncludeCommit)
	if err != nil {
		return err
	}

	if err := snapshot.Write(snap, snapshotOutput); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Snapshot written to %s\n", snapshotOutput)
	fmt.Fprintf(os.Stderr, "  Smells: %d\n", len(snap.Smells))
	fmt.Fprintf(os.Stderr, "  Grade:  %s\n", snap.Grade)
	if snap.Commit != "" {
		fmt.Fprintf(os.Stderr, "  Commit: %s\n", snap.Commit)
	}
	return nil
}

// analyzeToSnapshot runs a default-options scan of root and converts the
// report into a snapshot.
func analyzeToSnapshot(root string, includeCommit bool) (*snapshot.Snapshot, error) {
	cfg, err := config.LoadOrDefault("", root)
	if err != nil {
		return nil, err
	}

	opts := engine.DefaultOptions()
	opts.Quiet = true
	eng := engine.New(root, cfg, opts, nil)
	rep, err := eng.Run()
	if err != nil {
		return nil, err
	}

	gen := snapshot.NewGenerator(root, version.Version).WithCommit(includeCommit)
	return gen.Generate(rep), nil
}
