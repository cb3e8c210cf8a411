// Package rules resolves the effective configuration of one detector for one
// file: base rule, then per-path overrides in declaration order, later
// matches winning. Options merge shallowly by key.
package rules

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/archlint/archlint/internal/config"
)

// Resolved is the effective (enabled, severity, exclude, options) tuple for
// one detector, optionally specialized for a file path.
type Resolved struct {
	Enabled  bool
	Severity config.Severity
	Exclude  []string
	Options  map[string]any
}

// Resolve computes the effective rule for detectorID. filePath may be empty
// for global (non-per-file) resolution; when set, matching overrides apply
// on top of the base rule.
func Resolve(cfg *config.Config, detectorID string, filePath string) Resolved {
	r := Resolved{
		Enabled:  true,
		Severity: config.SeverityMedium,
		Options:  map[string]any{},
	}

	if rule, ok := cfg.Rules[detectorID]; ok {
		r.apply(rule)
	}

	if filePath != "" {
		for _, override := range cfg.Overrides {
			if !matchesAny(filePath, override.Files) {
				continue
			}
			if rule, ok := override.Rules[detectorID]; ok {
				r.apply(rule)
			}
		}
	}

	return r
}

func (r *Resolved) apply(rule config.RuleConfig) {
	if rule.IsShort() {
		if severity, enabled := rule.Short.Severity(); enabled {
			r.Enabled = true
			r.Severity = severity
		} else {
			r.Enabled = false
		}
		return
	}

	if rule.Enabled != nil {
		r.Enabled = *rule.Enabled
	}
	if rule.Severity != "" {
		if severity, enabled := rule.Severity.Severity(); enabled {
			r.Enabled = true
			r.Severity = severity
		} else {
			r.Enabled = false
		}
	}
	if len(rule.Exclude) > 0 {
		r.Exclude = append([]string(nil), rule.Exclude...)
	}
	for k, v := range rule.Options {
		r.Options[k] = v
	}
}

func matchesAny(path string, patterns []string) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, slashed); err == nil && ok {
			return true
		}
		// Absolute paths still match project-relative patterns by suffix.
		if !strings.HasPrefix(pattern, "/") && strings.HasPrefix(slashed, "/") {
			if ok, err := doublestar.Match("**/"+pattern, slashed); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// IntOption fetches an integer option, tolerating YAML's int/float decodings.
func (r *Resolved) IntOption(key string, fallback int) int {
	switch v := r.Options[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// FloatOption fetches a float option.
func (r *Resolved) FloatOption(key string, fallback float64) float64 {
	switch v := r.Options[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return fallback
	}
}

// BoolOption fetches a boolean option.
func (r *Resolved) BoolOption(key string, fallback bool) bool {
	if v, ok := r.Options[key].(bool); ok {
		return v
	}
	return fallback
}

// StringOption fetches a string option.
func (r *Resolved) StringOption(key string, fallback string) string {
	if v, ok := r.Options[key].(string); ok {
		return v
	}
	return fallback
}

// StringsOption fetches a string-list option.
func (r *Resolved) StringsOption(key string, fallback []string) []string {
	raw, ok := r.Options[key].([]any)
	if !ok {
		return fallback
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// DecodeOption deserializes a structured option (late-bound coercion) into
// out, e.g. the layer table of the layer-violation detector.
func (r *Resolved) DecodeOption(key string, out any) bool {
	v, ok := r.Options[key]
	if !ok {
		return false
	}
	raw, err := yaml.Marshal(v)
	if err != nil {
		return false
	}
	return yaml.Unmarshal(raw, out) == nil
}
