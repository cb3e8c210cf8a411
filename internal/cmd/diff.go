package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/archlint/archlint/internal/archerr"
	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/diff"
	"github.com/archlint/archlint/internal/gitutil"
	"github.com/archlint/archlint/internal/projectroot"
	"github.com/archlint/archlint/internal/snapshot"
)

var (
	diffJSON        bool
	diffExplain     bool
	diffFailOn      string
	diffProjectPath string
)

var diffCmd = &cobra.Command{
	Use:   "diff BASELINE [CURRENT]",
	Short: "Compare two snapshots and classify the changes",
	Long: `Diff compares a baseline against the current state (or a second
snapshot) and reports regressions and improvements. BASELINE and CURRENT may
be snapshot files or git refs; a ref is analyzed in a temporary detached
worktree. An empty CURRENT analyzes the working tree.

Exit code 1 when any regression reaches the --fail-on severity.

Examples:
  archlint diff baseline.json
  archlint diff main --fail-on high
  archlint diff v1.2.0 v1.3.0 --json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)

	flags := diffCmd.Flags()
	flags.BoolVar(&diffJSON, "json", false, "JSON output")
	flags.BoolVar(&diffExplain, "explain", false, "Include context for each regression")
	flags.StringVar(&diffFailOn, "fail-on", "low", "Fail when a regression reaches this severity")
	flags.StringVarP(&diffProjectPath, "project", "p", ".", "Project path")
}

func runDiff(cmd *cobra.Command, args []string) error {
	settings := config.DefaultSettings()
	settings.ConfigureLogger()

	root := projectroot.Detect(diffProjectPath)

	baseline, err := loadSnapshotSource(args[0], root)
	if err != nil {
		return err
	}

	current := ""
	if len(args) > 1 {
		current = args[1]
	}
	currentSnap, err := loadCurrentSource(current, root)
	if err != nil {
		return err
	}

	cfg, err := config.LoadOrDefault("", root)
	if err != nil {
		return err
	}

	result := diff.NewEngine().
		WithThreshold(cfg.Diff.MetricThresholdPercent).
		Diff(baseline, currentSnap)

	if diffJSON {
		raw, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return archerr.Wrap(archerr.KindInternal, "encode diff result", err)
		}
		fmt.Println(string(raw))
	} else {
		printDiffResult(result)
	}

	if result.ShouldFail(diffFailOn) {
		exitCode = archerr.ExitGate
	}
	return nil
}

// loadSnapshotSource reads a snapshot file or analyzes a git ref.
func loadSnapshotSource(source, root string) (*snapshot.Snapshot, error) {
	if isSnapshotFile(source) {
		return snapshot.Read(source)
	}
	return snapshotFromRef(source, root)
}

func loadCurrentSource(source, root string) (*snapshot.Snapshot, error) {
	if source == "" {
		fmt.Fprintln(os.Stderr, "Analyzing current state...")
		return analyzeToSnapshot(root, true)
	}
	return loadSnapshotSource(source, root)
}

func isSnapshotFile(s string) bool {
	if strings.HasSuffix(s, ".json") {
		return true
	}
	info, err := os.Stat(s)
	return err == nil && info.Mode().IsRegular()
}

// snapshotFromRef materializes the ref in a temporary worktree and scans it.
func snapshotFromRef(ref, root string) (*snapshot.Snapshot, error) {
	commit, err := gitutil.ResolveRef(root, ref)
	if err != nil {
		return nil, err
	}

	worktree, err := gitutil.NewTempWorktree(root, commit)
	if err != nil {
		return nil, err
	}
	defer worktree.Close()

	short := commit
	if len(short) > 7 {
		short = short[:7]
	}
	fmt.Fprintf(os.Stderr, "Analyzing %s (%s) in temporary worktree...\n", ref, short)

	snap, err := analyzeToSnapshot(worktree.Path, true)
	if err != nil {
		return nil, err
	}
	snap.Commit = commit
	return snap, nil
}

func printDiffResult(result *diff.Result) {
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	bold := color.New(color.Bold)

	if result.HasRegressions {
		bold.Printf("Regressions (%d):\n", len(result.Regressions))
		for _, reg := range result.Regressions {
			red.Printf("  ✗ %s\n", reg.Message)
			if diffExplain && reg.Smell != nil && len(reg.Smell.Files) > 0 {
				fmt.Printf("      files: %s\n", strings.Join(reg.Smell.Files, ", "))
				if loc := firstLocation(reg.Smell); loc != "" {
					fmt.Printf("      at: %s\n", loc)
				}
			}
		}
		fmt.Println()
	}

	if len(result.Improvements) > 0 {
		bold.Printf("Improvements (%d):\n", len(result.Improvements))
		for _, imp := range result.Improvements {
			green.Printf("  ✓ %s\n", imp.Message)
		}
		fmt.Println()
	}

	if !result.HasRegressions && len(result.Improvements) == 0 {
		fmt.Println("No architectural changes.")
		return
	}

	fmt.Printf("%d new, %d fixed, %d worsened, %d improved\n",
		result.Summary.NewSmells, result.Summary.FixedSmells,
		result.Summary.WorsenedSmells, result.Summary.ImprovedSmells)
}

func firstLocation(smell *snapshot.Smell) string {
	if len(smell.Locations) == 0 {
		return ""
	}
	loc := smell.Locations[0]
	return fmt.Sprintf("%s:%d", filepath.ToSlash(loc.File), loc.Line)
}
