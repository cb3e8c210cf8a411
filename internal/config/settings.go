package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"log/slog"
)

// Settings holds the per-invocation CLI options shared by the commands.
// Config holds what lives in .archlint.yaml; Settings holds what came from
// flags and the environment.
type Settings struct {
	// Scan behavior
	Language         string // "ts" or "js"
	ConfigPath       string
	ReportFile       string
	Format           string // table | markdown | json
	JSON             bool
	NoDiagram        bool
	AllDetectors     bool
	Detectors        string // comma-separated include list
	ExcludeDetectors string // comma-separated exclude list
	Quiet            bool
	Verbose          bool
	MinSeverity      string
	MinScore         int
	SeverityOverride string // e.g. "dead_code=low,god_module=high"
	NoCache          bool
	NoGit            bool
	GitHistoryPeriod string

	// Logging
	LogLevel  slog.Level
	LogFormat string
}

// DefaultSettings returns the flag defaults, seeded from ARCHLINT_LOG.
func DefaultSettings() *Settings {
	s := &Settings{
		Language:  "ts",
		Format:    "table",
		LogLevel:  slog.LevelError,
		LogFormat: "text",
	}
	if env := os.Getenv("ARCHLINT_LOG"); env != "" {
		if level, err := parseLogLevel(env); err == nil {
			s.LogLevel = level
		}
	}
	return s
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug", "trace":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

// ConfigureLogger installs the process logger per the settings and returns it.
func (s *Settings) ConfigureLogger() *slog.Logger {
	var output io.Writer = os.Stderr

	level := s.LogLevel
	if s.Verbose && level > slog.LevelInfo {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(s.LogFormat) == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// IsQuiet reports whether progress output must be suppressed. JSON output
// implies quiet so stdout stays machine-readable.
func (s *Settings) IsQuiet() bool {
	return s.Quiet || s.JSON || s.Format == "json"
}

// OutputFormat resolves the effective format, honoring the --json shortcut.
func (s *Settings) OutputFormat() string {
	if s.JSON {
		return "json"
	}
	return s.Format
}

// Extensions returns the file extensions for the selected language.
func (s *Settings) Extensions() []string {
	if s.Language == "js" {
		return []string{"js", "jsx", "mjs", "cjs"}
	}
	return []string{"ts", "tsx", "js", "jsx", "mjs", "cjs"}
}

// Validate rejects inconsistent flag combinations.
func (s *Settings) Validate() error {
	switch s.OutputFormat() {
	case "table", "markdown", "json":
	default:
		return fmt.Errorf("invalid format %q: want table, markdown, or json", s.Format)
	}
	if s.Language != "ts" && s.Language != "js" {
		return fmt.Errorf("invalid language %q: want ts or js", s.Language)
	}
	if s.MinSeverity != "" {
		if _, err := ParseSeverity(s.MinSeverity); err != nil {
			return err
		}
	}
	return nil
}

// ApplyToConfig folds CLI overrides into the loaded config: detector
// include/exclude lists become rule entries, git flags override the git
// block.
func (s *Settings) ApplyToConfig(cfg *Config) error {
	for _, id := range splitList(s.Detectors) {
		rule := cfg.Rules[id]
		if rule.IsShort() || rule.Options == nil {
			cfg.Rules[id] = RuleConfig{Short: LevelHigh}
		} else {
			enabled := true
			rule.Enabled = &enabled
			rule.Severity = LevelHigh
			cfg.Rules[id] = rule
		}
	}
	for _, id := range splitList(s.ExcludeDetectors) {
		rule := cfg.Rules[id]
		if rule.IsShort() || rule.Options == nil {
			cfg.Rules[id] = RuleConfig{Short: LevelOff}
		} else {
			disabled := false
			rule.Enabled = &disabled
			rule.Severity = LevelOff
			cfg.Rules[id] = rule
		}
	}

	if s.NoGit {
		cfg.Git.Enabled = false
	}
	if s.GitHistoryPeriod != "" {
		cfg.Git.HistoryPeriod = s.GitHistoryPeriod
	}

	return s.applySeverityOverrides(cfg)
}

// applySeverityOverrides parses "--severity id=level,id2=level2".
func (s *Settings) applySeverityOverrides(cfg *Config) error {
	for _, pair := range splitList(s.SeverityOverride) {
		id, level, found := strings.Cut(pair, "=")
		if !found {
			return fmt.Errorf("invalid severity override %q: want id=level", pair)
		}
		rl := RuleLevel(strings.ToLower(strings.TrimSpace(level)))
		if !rl.valid() {
			return fmt.Errorf("invalid severity %q in override", level)
		}
		id = strings.TrimSpace(id)
		rule := cfg.Rules[id]
		if rule.IsShort() || rule.Options == nil {
			cfg.Rules[id] = RuleConfig{Short: rl}
		} else {
			rule.Severity = rl
			cfg.Rules[id] = rule
		}
	}
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
