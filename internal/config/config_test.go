package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, root, content string) string {
	t.Helper()
	path := filepath.Join(root, ".archlint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadShortAndFullRuleForms(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
rules:
  cycles: high
  god_module:
    severity: critical
    exclude:
      - "**/legacy/**"
    options:
      fan_in: 15
`)

	cfg, err := LoadOrDefault("", root)
	require.NoError(t, err)

	cycles := cfg.Rules["cycles"]
	assert.True(t, cycles.IsShort())
	assert.Equal(t, LevelHigh, cycles.Short)

	god := cfg.Rules["god_module"]
	assert.False(t, god.IsShort())
	assert.Equal(t, LevelCritical, god.Severity)
	assert.Equal(t, []string{"**/legacy/**"}, god.Exclude)
	assert.Equal(t, 15, god.Options["fan_in"])
}

func TestLoadRejectsInvalidSeverity(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "rules:\n  cycles: loud\n")

	_, err := LoadOrDefault("", root)
	require.Error(t, err)
}

func TestLoadRejectsUnknownTopLevelField(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "rule: {}\n")

	_, err := LoadOrDefault("", root)
	require.Error(t, err)
}

func TestExtendsSingleString(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "extends: recommended\n")

	cfg, err := LoadOrDefault("", root)
	require.NoError(t, err)
	assert.Contains(t, cfg.Rules, "cycles")
	assert.Empty(t, cfg.Extends)
}

func TestExtendsUserWinsOverPreset(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
extends: [recommended]
rules:
  cycles: critical
`)

	cfg, err := LoadOrDefault("", root)
	require.NoError(t, err)
	assert.Equal(t, LevelCritical, cfg.Rules["cycles"].Short)
}

func TestExtendsUnknownPresetIsFatal(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "extends: does-not-exist\n")

	_, err := LoadOrDefault("", root)
	require.Error(t, err)
}

func TestLegacyThresholdsFoldIntoOptions(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
thresholds:
  large_file:
    max_lines: 400
`)

	cfg, err := LoadOrDefault("", root)
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Rules["large_file"].Options["max_lines"])
	assert.Nil(t, cfg.Thresholds)
}

func TestTsConfigEnrichmentAliasesAndExcludes(t *testing.T) {
	root := t.TempDir()
	tsconfigJSON := `{
  // JWCC: comments and trailing commas are fine
  "compilerOptions": {
    "baseUrl": "src",
    "outDir": "dist",
    "paths": {
      "@app/*": ["app/*"],
    },
  },
  "exclude": ["tmp"],
}`
	require.NoError(t, os.WriteFile(filepath.Join(root, "tsconfig.json"), []byte(tsconfigJSON), 0o644))
	writeConfig(t, root, "rules: {}\n")

	cfg, err := LoadOrDefault("", root)
	require.NoError(t, err)

	assert.Equal(t, "src/app/*", cfg.Aliases["@app/*"])
	assert.Contains(t, cfg.Ignore, "**/dist/**")
	assert.Contains(t, cfg.Ignore, "**/tmp/**")
}

func TestTsConfigChildAliasWins(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "tsconfig.json"),
		[]byte(`{"compilerOptions": {"paths": {"@app/*": ["ts/*"]}}}`), 0o644))
	writeConfig(t, root, `
aliases:
  "@app/*": "configured/*"
`)

	cfg, err := LoadOrDefault("", root)
	require.NoError(t, err)
	assert.Equal(t, "configured/*", cfg.Aliases["@app/*"])
}

func TestTsConfigDisabled(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "tsconfig.json"),
		[]byte(`{"compilerOptions": {"paths": {"@x/*": ["x/*"]}}}`), 0o644))
	writeConfig(t, root, "tsconfig: false\n")

	cfg, err := LoadOrDefault("", root)
	require.NoError(t, err)
	assert.NotContains(t, cfg.Aliases, "@x/*")
}

func TestConfigHashChangesWithContent(t *testing.T) {
	a := Default()
	b := Default()
	b.Ignore = append(b.Ignore, "**/gen/**")

	assert.NotEmpty(t, a.Hash())
	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestSeverityParsingAndWeights(t *testing.T) {
	high, err := ParseSeverity("High")
	require.NoError(t, err)
	assert.Equal(t, SeverityHigh, high)
	assert.Equal(t, 7, high.Weight())
	assert.Equal(t, 1, SeverityLow.Weight())
	assert.Equal(t, 3, SeverityMedium.Weight())
	assert.Equal(t, 15, SeverityCritical.Weight())

	_, err = ParseSeverity("loud")
	assert.Error(t, err)
}

func TestSettingsApplyDetectorLists(t *testing.T) {
	cfg := Default()
	s := DefaultSettings()
	s.Detectors = "cycles, dead_code"
	s.ExcludeDetectors = "large_file"

	require.NoError(t, s.ApplyToConfig(cfg))

	assert.Equal(t, LevelHigh, cfg.Rules["cycles"].Short)
	assert.Equal(t, LevelHigh, cfg.Rules["dead_code"].Short)
	assert.Equal(t, LevelOff, cfg.Rules["large_file"].Short)
}

func TestSettingsSeverityOverrides(t *testing.T) {
	cfg := Default()
	s := DefaultSettings()
	s.SeverityOverride = "dead_code=low,god_module=critical"

	require.NoError(t, s.ApplyToConfig(cfg))
	assert.Equal(t, LevelLow, cfg.Rules["dead_code"].Short)
	assert.Equal(t, LevelCritical, cfg.Rules["god_module"].Short)

	s.SeverityOverride = "dead_code"
	assert.Error(t, s.ApplyToConfig(cfg))
}

func TestSettingsNoGitDisablesGit(t *testing.T) {
	cfg := Default()
	require.True(t, cfg.Git.Enabled)

	s := DefaultSettings()
	s.NoGit = true
	require.NoError(t, s.ApplyToConfig(cfg))
	assert.False(t, cfg.Git.Enabled)
}
