package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/archlint/archlint/internal/archerr"
	"github.com/archlint/archlint/internal/cache"
	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/engine"
	"github.com/archlint/archlint/internal/projectroot"
	"github.com/archlint/archlint/internal/report"
)

var scanSettings = config.DefaultSettings()

var scanCmd = &cobra.Command{
	Use:   "scan [PATH]",
	Short: "Scan a project for architectural smells",
	Long: `Scan analyzes a project directory and prints a graded report.

Examples:
  archlint scan
  archlint scan ./web --format markdown --report report.md
  archlint scan --detectors cycles,dead_code --json
  archlint scan --all --min-severity high`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	flags := scanCmd.Flags()
	flags.StringVar(&scanSettings.Language, "lang", scanSettings.Language, "Project language: ts or js")
	flags.StringVar(&scanSettings.ConfigPath, "config", "", "Config file path")
	flags.StringVar(&scanSettings.ReportFile, "report", "", "Write the report to a file instead of stdout")
	flags.StringVar(&scanSettings.Format, "format", scanSettings.Format, "Report format: table, markdown, or json")
	flags.BoolVar(&scanSettings.JSON, "json", false, "Shortcut for --format json")
	flags.BoolVar(&scanSettings.NoDiagram, "no-diagram", false, "Omit the dependency diagram from Markdown reports")
	flags.BoolVar(&scanSettings.AllDetectors, "all", false, "Run every detector, including those disabled by default")
	flags.StringVar(&scanSettings.Detectors, "detectors", "", "Only run these detectors (comma-separated IDs)")
	flags.StringVar(&scanSettings.ExcludeDetectors, "exclude-detectors", "", "Skip these detectors (comma-separated IDs)")
	flags.BoolVarP(&scanSettings.Quiet, "quiet", "q", false, "No progress output (CI-friendly)")
	flags.BoolVarP(&scanSettings.Verbose, "verbose", "v", false, "Verbose logging")
	flags.StringVar(&scanSettings.MinSeverity, "min-severity", "", "Only report smells at or above this severity")
	flags.IntVar(&scanSettings.MinScore, "min-score", 0, "Only report smells scoring at least this much")
	flags.StringVar(&scanSettings.SeverityOverride, "severity", "", "Severity overrides, e.g. \"dead_code=low,god_module=high\"")
	flags.BoolVar(&scanSettings.NoCache, "no-cache", false, "Ignore and bypass the analysis cache")
	flags.BoolVar(&scanSettings.NoGit, "no-git", false, "Disable git integration (no churn analysis)")
	flags.StringVar(&scanSettings.GitHistoryPeriod, "git-history-period", "", "Churn lookback window, e.g. 90d, 1y, all")
}

func runScan(cmd *cobra.Command, args []string) error {
	logger := scanSettings.ConfigureLogger()
	if err := scanSettings.Validate(); err != nil {
		return archerr.Wrap(archerr.KindConfig, "invalid flags", err)
	}

	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	root := projectroot.Detect(target)

	cfg, err := config.LoadOrDefault(scanSettings.ConfigPath, root)
	if err != nil {
		return err
	}
	if err := scanSettings.ApplyToConfig(cfg); err != nil {
		return archerr.Wrap(archerr.KindConfig, "invalid flags", err)
	}

	if scanSettings.NoCache {
		if err := cache.Clear(root); err != nil {
			logger.Warn("failed to clear cache", "error", err)
		}
	}

	eng := engine.New(root, cfg, engine.Options{
		Extensions:   scanSettings.Extensions(),
		EnableCache:  !scanSettings.NoCache,
		EnableGit:    !scanSettings.NoGit,
		AllDetectors: scanSettings.AllDetectors,
		Include:      splitIDList(scanSettings.Detectors),
		Exclude:      splitIDList(scanSettings.ExcludeDetectors),
		Quiet:        scanSettings.IsQuiet(),
	}, logger)

	rep, err := eng.Run()
	if err != nil {
		return err
	}

	applyReportFilters(rep)

	renderer, err := report.NewRenderer(scanSettings.OutputFormat(), !scanSettings.NoDiagram)
	if err != nil {
		return archerr.Wrap(archerr.KindConfig, "invalid format", err)
	}
	out, err := renderer.Render(rep)
	if err != nil {
		return archerr.Wrap(archerr.KindInternal, "render report", err)
	}

	if scanSettings.ReportFile != "" {
		if err := os.WriteFile(scanSettings.ReportFile, []byte(out), 0o644); err != nil {
			return archerr.Wrap(archerr.KindIo, "write report", err)
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", scanSettings.ReportFile)
	} else {
		fmt.Print(out)
	}

	return nil
}

func applyReportFilters(rep *report.AnalysisReport) {
	if scanSettings.MinSeverity != "" {
		if min, err := config.ParseSeverity(scanSettings.MinSeverity); err == nil {
			rep.FilterMinSeverity(min)
		}
	}
	if scanSettings.MinScore > 0 {
		rep.FilterMinScore(scanSettings.MinScore)
	}
}

func splitIDList(s string) []string {
	if s == "" {
		return nil
	}
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}
