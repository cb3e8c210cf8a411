package detect

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/framework"
	"github.com/archlint/archlint/internal/graph"
	"github.com/archlint/archlint/internal/parser"
	"github.com/archlint/archlint/internal/rules"
)

// FileMetrics is the lightweight per-file measurement set.
type FileMetrics struct {
	Lines int `json:"lines"`
}

// Context is the read-only view detectors operate on. The orchestrator owns
// the maps; detectors must never mutate them. One Context lives for one scan
// and is shared across the detector workers.
type Context struct {
	ProjectPath        string
	Graph              *graph.DependencyGraph
	FileSymbols        map[string]*parser.FileSymbols
	FunctionComplexity map[string][]parser.FunctionComplexity
	FileMetrics        map[string]FileMetrics
	ParsedFiles        map[string]*parser.ParsedFile
	ChurnMap           map[string]int
	Config             *config.Config
	ScriptEntryPoints  map[string]bool
	DynamicLoadPattern []string
	Frameworks         []framework.Framework
	FileTypes          map[string]framework.FileType

	presets []*framework.Preset
}

// NewContext wires an empty context for one project; frameworks and their
// presets are recorded later through SetFrameworks.
func NewContext(projectPath string, cfg *config.Config) *Context {
	return &Context{
		ProjectPath:        projectPath,
		Graph:              graph.New(),
		FileSymbols:        map[string]*parser.FileSymbols{},
		FunctionComplexity: map[string][]parser.FunctionComplexity{},
		FileMetrics:        map[string]FileMetrics{},
		ParsedFiles:        map[string]*parser.ParsedFile{},
		ChurnMap:           map[string]int{},
		Config:             cfg,
		ScriptEntryPoints:  map[string]bool{},
		FileTypes:          map[string]framework.FileType{},
	}
}

// SetFrameworks records the detected frameworks and refreshes the preset
// cache.
func (c *Context) SetFrameworks(frameworks []framework.Framework) {
	c.Frameworks = frameworks
	c.presets = framework.Presets(frameworks)
}

// Presets returns the active framework presets.
func (c *Context) Presets() []*framework.Preset {
	if c.presets == nil && len(c.Frameworks) > 0 {
		c.presets = framework.Presets(c.Frameworks)
	}
	return c.presets
}

// Relative strips the project root from an absolute path, POSIX-slashed.
func (c *Context) Relative(path string) string {
	rel, err := filepath.Rel(c.ProjectPath, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// ResolveRule resolves the effective rule for a detector, optionally for a
// specific file.
func (c *Context) ResolveRule(detectorID, filePath string) rules.Resolved {
	if filePath != "" {
		filePath = c.Relative(filePath)
	}
	return rules.Resolve(c.Config, detectorID, filePath)
}

// Rule returns the global rule for a detector, or nil when disabled.
func (c *Context) Rule(detectorID string) *rules.Resolved {
	r := c.ResolveRule(detectorID, "")
	if !r.Enabled {
		return nil
	}
	return &r
}

// RuleForFile returns the rule for a detector on one file, or nil when the
// detector is disabled there, the file matches the rule's excludes, or the
// framework preset skips the detector for this file type.
func (c *Context) RuleForFile(detectorID, path string) *rules.Resolved {
	r := c.ResolveRule(detectorID, path)
	if !r.Enabled || c.IsExcluded(path, r.Exclude) || c.skipsDetector(path, detectorID) {
		return nil
	}
	return &r
}

// IsExcluded matches path against the rule-level exclude globs.
func (c *Context) IsExcluded(path string, excludes []string) bool {
	if len(excludes) == 0 {
		return false
	}
	rel := c.Relative(path)
	for _, pattern := range excludes {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func (c *Context) skipsDetector(path, detectorID string) bool {
	fileType, ok := c.FileTypes[path]
	if !ok || fileType == framework.FileTypeUnknown {
		return false
	}
	for _, preset := range c.Presets() {
		if rules, ok := preset.FileRules[fileType]; ok {
			for _, skipped := range rules.SkipDetectors {
				if skipped == detectorID {
					return true
				}
			}
		}
	}
	return false
}

// IsFrameworkEntryPoint reports whether a preset marks this file's type as
// an entry point (pages, stories, modules...).
func (c *Context) IsFrameworkEntryPoint(path string) bool {
	fileType, ok := c.FileTypes[path]
	if !ok || fileType == framework.FileTypeUnknown {
		return false
	}
	for _, preset := range c.Presets() {
		if rules, ok := preset.FileRules[fileType]; ok && rules.IsEntryPoint {
			return true
		}
	}
	return false
}

// IsDynamicallyLoaded reports whether the file matches any discovered
// dynamic-load glob.
func (c *Context) IsDynamicallyLoaded(path string) bool {
	rel := c.Relative(path)
	for _, pattern := range c.DynamicLoadPattern {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// GitAvailable reports whether churn data is usable: git enabled and the
// churn map non-empty.
func (c *Context) GitAvailable() bool {
	return c.Config.Git.Enabled && len(c.ChurnMap) > 0
}
