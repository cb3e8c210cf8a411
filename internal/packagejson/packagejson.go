// Package packagejson mines package manifests for script entry points and
// dynamic-load glob patterns. Files a script runs directly are program
// starts, so dead-code analysis must treat them as roots; glob arguments in
// scripts (test runners, loaders) mark files that are loaded without any
// import edge.
package packagejson

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Config is what the manifests contribute to the analysis.
type Config struct {
	// EntryPoints are canonical absolute paths of files named by scripts.
	EntryPoints map[string]bool
	// DynamicLoadPatterns are project-relative globs from script arguments.
	DynamicLoadPatterns []string
}

var (
	pathPattern = regexp.MustCompile(`(\S*[a-zA-Z0-9_\-./]+\.(?:ts|js|tsx|jsx)|\bdist/\S+|\bbuild/\S+)`)
	globPattern = regexp.MustCompile(`([^\s'"]*\*[^\s'"]*\.(?:ts|js|tsx|jsx|mjs|cjs))`)
)

// Parse scans every package.json under root (node_modules excluded).
func Parse(root string) *Config {
	cfg := &Config{EntryPoints: map[string]bool{}}

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
		cfg.parseManifest(path)
		return nil
	})

	return cfg
}

func (c *Config) parseManifest(manifestPath string) {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return
	}
	var manifest struct {
		Main    string            `json:"main"`
		Scripts map[string]string `json:"scripts"`
	}
	if json.Unmarshal(raw, &manifest) != nil {
		return
	}

	dir := filepath.Dir(manifestPath)
	if manifest.Main != "" {
		c.addEntryCandidates(dir, manifest.Main)
	}
	for _, script := range manifest.Scripts {
		for _, match := range pathPattern.FindAllString(script, -1) {
			c.addEntryCandidates(dir, match)
		}
		for _, match := range globPattern.FindAllString(script, -1) {
			c.addDynamicPattern(match)
		}
	}
}

// addEntryCandidates resolves a script path to real files, also probing the
// src/ counterpart of built dist/build paths (scripts run compiled output;
// the source tree holds the .ts original).
func (c *Config) addEntryCandidates(dir, match string) {
	candidates := []string{filepath.Join(dir, match)}

	if strings.Contains(match, "dist/") || strings.Contains(match, "build/") {
		src := strings.ReplaceAll(match, "dist/", "src/")
		src = strings.ReplaceAll(src, "build/", "src/")
		if strings.HasSuffix(src, ".js") {
			candidates = append(candidates, filepath.Join(dir, strings.TrimSuffix(src, ".js")+".ts"))
		} else {
			candidates = append(candidates, filepath.Join(dir, src))
		}
	}

	for _, candidate := range candidates {
		canonical, err := filepath.EvalSymlinks(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(canonical); err == nil && info.Mode().IsRegular() {
			c.EntryPoints[canonical] = true
		}
	}
}

// addDynamicPattern rewrites built-output globs to their source form and
// de-duplicates.
func (c *Config) addDynamicPattern(pattern string) {
	src := strings.ReplaceAll(pattern, "build/", "src/")
	src = strings.ReplaceAll(src, "dist/", "src/")
	src = strings.ReplaceAll(src, ".jsx", ".tsx")
	src = strings.ReplaceAll(src, ".mjs", ".ts")
	src = strings.ReplaceAll(src, ".cjs", ".ts")
	if strings.HasSuffix(src, ".js") {
		src = strings.TrimSuffix(src, ".js") + ".ts"
	}
	if !strings.Contains(src, "*") {
		return
	}
	for _, existing := range c.DynamicLoadPatterns {
		if existing == src {
			return
		}
	}
	c.DynamicLoadPatterns = append(c.DynamicLoadPatterns, src)
}
