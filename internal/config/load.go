package config

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/archlint/archlint/internal/archerr"
)

//go:embed presets/*.yaml
var presetFS embed.FS

// configFileNames are probed in order when no explicit path is given.
var configFileNames = []string{
	".archlint.yaml",
	".archlint.yml",
	"archlint.yaml",
	"archlint.yml",
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, archerr.Wrap(archerr.KindIo, "read config", err)
	}
	return parse(raw)
}

// LoadOrDefault loads the explicit path if given, otherwise probes the
// project root for the standard file names, otherwise returns defaults. The
// result has extends chains applied, legacy thresholds folded in, and —
// unless disabled — tsconfig enrichment performed.
func LoadOrDefault(path string, projectRoot string) (*Config, error) {
	var cfg *Config
	var err error

	switch {
	case path != "":
		cfg, err = Load(path)
	default:
		cfg = nil
		for _, name := range configFileNames {
			candidate := filepath.Join(projectRoot, name)
			if _, statErr := os.Stat(candidate); statErr == nil {
				cfg, err = Load(candidate)
				break
			}
		}
		if cfg == nil && err == nil {
			cfg = Default()
		}
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.applyExtends(); err != nil {
		return nil, err
	}
	cfg.foldLegacyThresholds()

	if projectRoot != "" && (cfg.TsConfig == nil || !cfg.TsConfig.Disabled) {
		cfg.EnrichFromTsConfig(projectRoot)
	}

	return cfg, nil
}

func parse(raw []byte) (*Config, error) {
	if err := validateSchema(raw); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, archerr.Wrap(archerr.KindConfig, "parse config YAML", err)
	}
	if cfg.Rules == nil {
		cfg.Rules = map[string]RuleConfig{}
	}
	if cfg.Aliases == nil {
		cfg.Aliases = map[string]string{}
	}
	return cfg, nil
}

// applyExtends stacks the named presets under the user config: preset values
// come first, the user's own settings win on conflict. Presets apply in
// declaration order, later presets overriding earlier ones.
func (c *Config) applyExtends() error {
	if len(c.Extends) == 0 {
		return nil
	}

	merged := Default()
	for _, name := range c.Extends {
		preset, err := loadPreset(name)
		if err != nil {
			return err
		}
		merged.mergeFrom(preset)
	}
	merged.mergeFrom(c)

	merged.Extends = nil
	*c = *merged
	return nil
}

func loadPreset(name string) (*Config, error) {
	raw, err := presetFS.ReadFile("presets/" + name + ".yaml")
	if err != nil {
		return nil, archerr.Newf(archerr.KindConfig, "unknown preset %q", name)
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, archerr.Wrap(archerr.KindConfig, "parse preset "+name, err)
	}
	return cfg, nil
}

// mergeFrom overlays other on top of c: other's entries win on key conflict,
// list fields append.
func (c *Config) mergeFrom(other *Config) {
	for id, rule := range other.Rules {
		c.Rules[id] = rule
	}
	c.Overrides = append(c.Overrides, other.Overrides...)
	c.Ignore = append(c.Ignore, other.Ignore...)
	for alias, target := range other.Aliases {
		c.Aliases[alias] = target
	}
	c.EntryPoints = append(c.EntryPoints, other.EntryPoints...)
	if other.TsConfig != nil {
		c.TsConfig = other.TsConfig
	}
	if other.Diff.MetricThresholdPercent != 0 {
		c.Diff.MetricThresholdPercent = other.Diff.MetricThresholdPercent
	}
	if other.Diff.LineTolerance != 0 {
		c.Diff.LineTolerance = other.Diff.LineTolerance
	}
	c.Git = other.Git
	if other.Scoring != (ScoringConfig{}) {
		c.Scoring = other.Scoring
	}
	if other.MaxFileSize != 0 {
		c.MaxFileSize = other.MaxFileSize
	}
}

// foldLegacyThresholds converts old top-level threshold blocks into rule
// options so only one lookup path exists downstream.
func (c *Config) foldLegacyThresholds() {
	for id, opts := range c.Thresholds {
		rule := c.Rules[id]
		if rule.IsShort() {
			rule = RuleConfig{Severity: rule.Short}
		}
		if rule.Options == nil {
			rule.Options = map[string]any{}
		}
		for k, v := range opts {
			if _, exists := rule.Options[k]; !exists {
				rule.Options[k] = v
			}
		}
		c.Rules[id] = rule
	}
	c.Thresholds = nil
}

// Hash returns a hex digest of the effective configuration, used for cache
// invalidation.
func (c *Config) Hash() string {
	raw, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
