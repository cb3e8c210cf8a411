// Package config loads and models the .archlint.yaml configuration: rules,
// per-path overrides, aliases, presets via extends, and the toolchain
// (tsconfig) enrichment.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// RuleLevel is the short form of a rule setting: off | info | low | warn |
// medium | error | high | critical.
type RuleLevel string

const (
	LevelOff      RuleLevel = "off"
	LevelInfo     RuleLevel = "info"
	LevelLow      RuleLevel = "low"
	LevelWarn     RuleLevel = "warn"
	LevelMedium   RuleLevel = "medium"
	LevelError    RuleLevel = "error"
	LevelHigh     RuleLevel = "high"
	LevelCritical RuleLevel = "critical"
)

// Severity maps the short level onto the severity scale. Off reports
// (SeverityLow, false).
func (l RuleLevel) Severity() (Severity, bool) {
	switch l {
	case LevelOff:
		return SeverityLow, false
	case LevelInfo, LevelLow:
		return SeverityLow, true
	case LevelWarn, LevelMedium:
		return SeverityMedium, true
	case LevelError, LevelHigh:
		return SeverityHigh, true
	case LevelCritical:
		return SeverityCritical, true
	default:
		return SeverityMedium, true
	}
}

func (l RuleLevel) valid() bool {
	switch l {
	case LevelOff, LevelInfo, LevelLow, LevelWarn, LevelMedium, LevelError, LevelHigh, LevelCritical:
		return true
	}
	return false
}

// RuleConfig is one rule entry. YAML accepts either a short severity string
// or a full mapping {enabled, severity, exclude, options}.
type RuleConfig struct {
	// Short is set when the YAML value was a bare severity string.
	Short RuleLevel `yaml:"-"`

	Enabled  *bool          `yaml:"enabled"`
	Severity RuleLevel      `yaml:"severity"`
	Exclude  []string       `yaml:"exclude"`
	Options  map[string]any `yaml:"options"`
}

// IsShort reports whether this entry came from the short string form.
func (r *RuleConfig) IsShort() bool { return r.Short != "" }

// UnmarshalYAML handles both the short and the full form.
func (r *RuleConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var short string
		if err := node.Decode(&short); err != nil {
			return err
		}
		level := RuleLevel(short)
		if !level.valid() {
			return fmt.Errorf("invalid rule severity %q", short)
		}
		r.Short = level
		return nil
	}

	type fullForm struct {
		Enabled  *bool          `yaml:"enabled"`
		Severity RuleLevel      `yaml:"severity"`
		Exclude  []string       `yaml:"exclude"`
		Options  map[string]any `yaml:"options"`
	}
	var full fullForm
	if err := node.Decode(&full); err != nil {
		return err
	}
	if full.Severity != "" && !full.Severity.valid() {
		return fmt.Errorf("invalid rule severity %q", full.Severity)
	}
	r.Enabled = full.Enabled
	r.Severity = full.Severity
	r.Exclude = full.Exclude
	r.Options = full.Options
	return nil
}

// MarshalYAML emits the short form when possible.
func (r RuleConfig) MarshalYAML() (any, error) {
	if r.IsShort() {
		return string(r.Short), nil
	}
	type fullForm struct {
		Enabled  *bool          `yaml:"enabled,omitempty"`
		Severity RuleLevel      `yaml:"severity,omitempty"`
		Exclude  []string       `yaml:"exclude,omitempty"`
		Options  map[string]any `yaml:"options,omitempty"`
	}
	return fullForm{Enabled: r.Enabled, Severity: r.Severity, Exclude: r.Exclude, Options: r.Options}, nil
}

// Override applies rule settings to files matching any of the globs.
type Override struct {
	Files []string              `yaml:"files"`
	Rules map[string]RuleConfig `yaml:"rules"`
}

// StringList accepts a single string or a list in YAML.
type StringList []string

// UnmarshalYAML accepts both "x" and ["x", "y"].
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var single string
		if err := node.Decode(&single); err != nil {
			return err
		}
		if single != "" {
			*s = StringList{single}
		}
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*s = list
	return nil
}

// TsConfigSetting is the tsconfig field: a path, a boolean, or absent.
type TsConfigSetting struct {
	Path     string
	Disabled bool
	Set      bool
}

// UnmarshalYAML accepts false, true, or a path string.
func (t *TsConfigSetting) UnmarshalYAML(node *yaml.Node) error {
	t.Set = true
	var b bool
	if err := node.Decode(&b); err == nil {
		t.Disabled = !b
		return nil
	}
	return node.Decode(&t.Path)
}

// GitConfig controls git integration.
type GitConfig struct {
	Enabled       bool   `yaml:"enabled"`
	HistoryPeriod string `yaml:"history_period"`
}

// DiffConfig tunes the snapshot diff engine.
type DiffConfig struct {
	MetricThresholdPercent float64 `yaml:"metric_threshold_percent"`
	LineTolerance          int     `yaml:"line_tolerance"`
}

// ScoringConfig holds per-severity weight overrides for the grade.
type ScoringConfig struct {
	Low      int `yaml:"low"`
	Medium   int `yaml:"medium"`
	High     int `yaml:"high"`
	Critical int `yaml:"critical"`
}

// Weight returns the configured weight for sev, falling back to the default
// scale.
func (s ScoringConfig) Weight(sev Severity) int {
	switch sev {
	case SeverityLow:
		if s.Low > 0 {
			return s.Low
		}
	case SeverityMedium:
		if s.Medium > 0 {
			return s.Medium
		}
	case SeverityHigh:
		if s.High > 0 {
			return s.High
		}
	case SeverityCritical:
		if s.Critical > 0 {
			return s.Critical
		}
	}
	return sev.Weight()
}

// Config is the full archlint configuration.
type Config struct {
	Rules     map[string]RuleConfig `yaml:"rules"`
	Overrides []Override            `yaml:"overrides"`
	Ignore    []string              `yaml:"ignore"`
	Aliases   map[string]string     `yaml:"aliases"`
	Extends   StringList            `yaml:"extends"`
	TsConfig  *TsConfigSetting      `yaml:"tsconfig"`
	Diff      DiffConfig            `yaml:"diff"`
	Git       GitConfig             `yaml:"git"`
	Scoring   ScoringConfig         `yaml:"scoring"`
	// EntryPoints are project-relative files excluded from dead-code
	// analysis in addition to discovered script entry points.
	EntryPoints []string `yaml:"entry_points"`
	// MaxFileSize caps parsing, in bytes. 0 means no limit.
	MaxFileSize int64 `yaml:"max_file_size"`

	// Legacy detector threshold blocks kept for old configs. They are folded
	// into rule options at load time.
	Thresholds map[string]map[string]any `yaml:"thresholds"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Rules:   map[string]RuleConfig{},
		Aliases: map[string]string{},
		Git:     GitConfig{Enabled: true, HistoryPeriod: "90d"},
		Diff:    DiffConfig{MetricThresholdPercent: 10, LineTolerance: 5},
	}
}
