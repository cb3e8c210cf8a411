// Package tsconfig loads TypeScript compiler configuration for alias and
// exclude inheritance. tsconfig.json is JWCC (JSON with comments and
// trailing commas), so files go through hujson before decoding. Extends
// chains resolve through relative paths, absolute paths, and package-style
// node_modules lookups, with a visited set for cycle detection.
package tsconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/archlint/archlint/internal/archerr"
)

// CompilerOptions is the subset of compilerOptions the analyzer consumes.
type CompilerOptions struct {
	Paths   map[string][]string `json:"paths"`
	BaseURL string              `json:"baseUrl"`
	OutDir  string              `json:"outDir"`
	RootDir string              `json:"rootDir"`
}

// TsConfig is a loaded, extends-resolved configuration.
type TsConfig struct {
	CompilerOptions *CompilerOptions `json:"compilerOptions"`
	Exclude         []string         `json:"exclude"`
	Extends         string           `json:"extends"`
}

// Load reads the tsconfig at path, following extends recursively.
func Load(path string) (*TsConfig, error) {
	visited := map[string]bool{}
	return load(path, visited)
}

// FindAndLoad loads explicitPath when given, otherwise the standard
// tsconfig.json in projectRoot. Returns (nil, nil) when nothing exists.
func FindAndLoad(projectRoot, explicitPath string) (*TsConfig, error) {
	if explicitPath != "" {
		path := explicitPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(projectRoot, path)
		}
		if _, err := os.Stat(path); err != nil {
			return nil, archerr.Newf(archerr.KindConfig, "tsconfig path not found: %s", path)
		}
		return Load(path)
	}

	standard := filepath.Join(projectRoot, "tsconfig.json")
	if _, err := os.Stat(standard); err != nil {
		return nil, nil
	}
	return Load(standard)
}

func load(path string, visited map[string]bool) (*TsConfig, error) {
	canonical := path
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		canonical = resolved
	}
	if visited[canonical] {
		return nil, archerr.Newf(archerr.KindConfig, "circular tsconfig extends at %s", path)
	}
	visited[canonical] = true

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, archerr.Wrap(archerr.KindIo, "read tsconfig", err)
	}

	standardized, err := hujson.Standardize(raw)
	if err != nil {
		return nil, archerr.Wrap(archerr.KindConfig, "malformed tsconfig "+path, err)
	}

	var cfg TsConfig
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return nil, archerr.Wrap(archerr.KindConfig, "decode tsconfig "+path, err)
	}

	if cfg.Extends != "" {
		baseDir := filepath.Dir(path)
		parentPath, ok := resolveExtends(baseDir, cfg.Extends)
		if !ok {
			return nil, archerr.Newf(archerr.KindConfig, "cannot resolve tsconfig extends %q", cfg.Extends)
		}
		parent, err := load(parentPath, visited)
		if err != nil {
			return nil, err
		}
		cfg.mergeParent(parent)
	}

	return &cfg, nil
}

// resolveExtends handles relative, absolute, and package-style specifiers.
// Package specifiers walk up the directory tree probing node_modules.
func resolveExtends(baseDir, extends string) (string, bool) {
	switch {
	case strings.HasPrefix(extends, "."):
		return probeConfigPath(filepath.Join(baseDir, extends))
	case filepath.IsAbs(extends):
		return probeConfigPath(extends)
	default:
		current := baseDir
		for {
			nm := filepath.Join(current, "node_modules")
			if info, err := os.Stat(nm); err == nil && info.IsDir() {
				if resolved, ok := probeConfigPath(filepath.Join(nm, extends)); ok {
					return resolved, true
				}
			}
			parent := filepath.Dir(current)
			if parent == current {
				return "", false
			}
			current = parent
		}
	}
}

// probeConfigPath tries the path as-is, with .json appended, and as a
// directory holding tsconfig.json.
func probeConfigPath(path string) (string, bool) {
	if isFile(path) {
		return path, true
	}
	if withJSON := path + ".json"; isFile(withJSON) {
		return withJSON, true
	}
	if nested := filepath.Join(path, "tsconfig.json"); isFile(nested) {
		return nested, true
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// mergeParent overlays parent values under the child: child settings win.
func (c *TsConfig) mergeParent(parent *TsConfig) {
	if parent.CompilerOptions != nil {
		if c.CompilerOptions == nil {
			c.CompilerOptions = &CompilerOptions{}
		}
		child := c.CompilerOptions
		for alias, targets := range parent.CompilerOptions.Paths {
			if child.Paths == nil {
				child.Paths = map[string][]string{}
			}
			if _, exists := child.Paths[alias]; !exists {
				child.Paths[alias] = targets
			}
		}
		if child.BaseURL == "" {
			child.BaseURL = parent.CompilerOptions.BaseURL
		}
		if child.OutDir == "" {
			child.OutDir = parent.CompilerOptions.OutDir
		}
		if child.RootDir == "" {
			child.RootDir = parent.CompilerOptions.RootDir
		}
	}

	seen := map[string]bool{}
	for _, e := range c.Exclude {
		seen[e] = true
	}
	for _, e := range parent.Exclude {
		if !seen[e] {
			c.Exclude = append(c.Exclude, e)
		}
	}
}
