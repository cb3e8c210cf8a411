// Package framework detects which frameworks a project uses and loads the
// bundled presets that tune rules, entry points, and per-file-type behavior
// for them. Presets are YAML compiled into the binary; detection looks at
// dependency manifests and well-known config files.
package framework

import (
	"embed"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/archlint/archlint/internal/config"
)

//go:embed presets/*.yaml
var presetFS embed.FS

// Framework identifies a supported framework.
type Framework string

const (
	NestJS Framework = "nestjs"
	NextJS Framework = "nextjs"
	React  Framework = "react"
)

// FileType classifies a file within a framework's conventions.
type FileType string

const (
	FileTypeUnknown    FileType = ""
	FileTypeController FileType = "controller"
	FileTypeModule     FileType = "module"
	FileTypeService    FileType = "service"
	FileTypePage       FileType = "page"
	FileTypeLayout     FileType = "layout"
	FileTypeComponent  FileType = "component"
	FileTypeStory      FileType = "story"
)

// MatchRules is an any-of / all-of matcher over package or file names.
type MatchRules struct {
	AnyOf []string `yaml:"any_of"`
	AllOf []string `yaml:"all_of"`
}

// DetectRules describes how a preset recognizes its framework.
type DetectRules struct {
	Packages *MatchRules `yaml:"packages"`
	Files    *MatchRules `yaml:"files"`
}

// FileTypeRule assigns a FileType to files matching any glob.
type FileTypeRule struct {
	Type     FileType `yaml:"type"`
	Patterns []string `yaml:"patterns"`
}

// FileRules adjusts detector behavior for one FileType.
type FileRules struct {
	SkipDetectors []string `yaml:"skip_detectors"`
	IsEntryPoint  bool     `yaml:"is_entry_point"`
}

// Preset is one framework preset.
type Preset struct {
	Name        string                       `yaml:"name"`
	Version     int                          `yaml:"version"`
	Detect      DetectRules                  `yaml:"detect"`
	Rules       map[string]config.RuleConfig `yaml:"rules"`
	EntryPoints []string                     `yaml:"entry_points"`
	Overrides   []config.Override            `yaml:"overrides"`
	FileTypes   []FileTypeRule               `yaml:"file_types"`
	FileRules   map[FileType]FileRules       `yaml:"file_rules"`
}

var loadedPresets = mustLoadPresets()

func mustLoadPresets() map[Framework]*Preset {
	entries, err := presetFS.ReadDir("presets")
	if err != nil {
		panic(err)
	}
	presets := map[Framework]*Preset{}
	for _, entry := range entries {
		raw, err := presetFS.ReadFile("presets/" + entry.Name())
		if err != nil {
			panic(err)
		}
		var p Preset
		if err := yaml.Unmarshal(raw, &p); err != nil {
			panic("invalid bundled preset " + entry.Name() + ": " + err.Error())
		}
		presets[Framework(p.Name)] = &p
	}
	return presets
}

// Presets returns the presets for the detected frameworks, in stable
// (name-sorted) order. Later presets win on key conflicts, so callers apply
// them in order.
func Presets(frameworks []Framework) []*Preset {
	sorted := append([]Framework(nil), frameworks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var result []*Preset
	for _, fw := range sorted {
		if p, ok := loadedPresets[fw]; ok {
			result = append(result, p)
		}
	}
	return result
}

// Detect inspects the project for framework markers: preset-declared config
// files, then dependencies in every package.json outside node_modules.
func Detect(projectRoot string) []Framework {
	found := map[Framework]bool{}

	for fw, preset := range loadedPresets {
		if preset.Detect.Files == nil {
			continue
		}
		if matchRules(preset.Detect.Files, func(name string) bool {
			_, err := os.Stat(filepath.Join(projectRoot, name))
			return err == nil
		}) {
			found[fw] = true
		}
	}

	forEachPackageJSON(projectRoot, func(manifest map[string]json.RawMessage) {
		deps := collectDependencies(manifest)
		for fw, preset := range loadedPresets {
			if found[fw] || preset.Detect.Packages == nil {
				continue
			}
			if matchRules(preset.Detect.Packages, func(pkg string) bool {
				return hasDependency(deps, pkg)
			}) {
				found[fw] = true
			}
		}
	})

	result := make([]Framework, 0, len(found))
	for fw := range found {
		result = append(result, fw)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// ClassifyFile returns the FileType the presets assign to the
// project-relative path, first match winning in preset order.
func ClassifyFile(relPath string, presets []*Preset) FileType {
	slashed := filepath.ToSlash(relPath)
	for _, preset := range presets {
		for _, rule := range preset.FileTypes {
			for _, pattern := range rule.Patterns {
				if ok, err := doublestar.Match(pattern, slashed); err == nil && ok {
					return rule.Type
				}
			}
		}
	}
	return FileTypeUnknown
}

func matchRules(rules *MatchRules, check func(string) bool) bool {
	for _, candidate := range rules.AnyOf {
		if check(candidate) {
			return true
		}
	}
	if len(rules.AllOf) > 0 {
		for _, candidate := range rules.AllOf {
			if !check(candidate) {
				return false
			}
		}
		return true
	}
	return false
}

func forEachPackageJSON(root string, fn func(map[string]json.RawMessage)) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (name == "node_modules" || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != "package.json" {
			return nil
		}
		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		var manifest map[string]json.RawMessage
		if json.Unmarshal(raw, &manifest) == nil {
			fn(manifest)
		}
		return nil
	})
}

func collectDependencies(manifest map[string]json.RawMessage) map[string]bool {
	deps := map[string]bool{}
	for _, section := range []string{"dependencies", "devDependencies", "peerDependencies"} {
		raw, ok := manifest[section]
		if !ok {
			continue
		}
		var m map[string]json.RawMessage
		if json.Unmarshal(raw, &m) != nil {
			continue
		}
		for name := range m {
			deps[name] = true
		}
	}
	return deps
}

// hasDependency supports a trailing-* glob so "@nestjs/*" matches any
// package in the scope.
func hasDependency(deps map[string]bool, pkg string) bool {
	if deps[pkg] {
		return true
	}
	if prefix, ok := strings.CutSuffix(pkg, "*"); ok {
		for name := range deps {
			if strings.HasPrefix(name, prefix) {
				return true
			}
		}
	}
	return false
}
