// Package scanner enumerates the source files of a project, honoring ignore
// patterns from config, the .archlintignore file, and the standard build
// artifact directories.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnoreFileName is the project-local ignore file, one glob per line,
// '#' comments allowed.
const IgnoreFileName = ".archlintignore"

// hardExcluded directories are never scanned regardless of configuration.
var hardExcluded = map[string]bool{
	"node_modules": true,
	"dist":         true,
	"build":        true,
	".next":        true,
	"coverage":     true,
}

// Scanner walks a project root collecting source files.
type Scanner struct {
	root       string
	extensions map[string]bool
	ignores    []string
	logger     *slog.Logger
}

// New creates a scanner for root accepting the given extensions (without
// leading dot) and user ignore globs.
func New(root string, extensions []string, ignores []string, logger *slog.Logger) *Scanner {
	extSet := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		extSet[strings.TrimPrefix(e, ".")] = true
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scanner{root: root, extensions: extSet, logger: logger}
	s.ignores = append(s.ignores, ignores...)
	s.ignores = append(s.ignores, loadIgnoreFile(filepath.Join(root, IgnoreFileName))...)
	return s
}

// Scan returns the canonicalized absolute paths of all matching files.
// Per-entry errors are logged and skipped; they never abort the walk.
func (s *Scanner) Scan() ([]string, error) {
	var files []string

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Debug("skipping unreadable entry", "path", path, "error", err)
			return nil
		}

		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			name := d.Name()
			if path != s.root && (hardExcluded[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			if s.isIgnoredDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if !s.extensions[ext] {
			return nil
		}
		if s.isIgnored(rel) {
			return nil
		}

		canonical, cErr := filepath.EvalSymlinks(path)
		if cErr != nil {
			canonical = path
		}
		if abs, aErr := filepath.Abs(canonical); aErr == nil {
			canonical = abs
		}
		files = append(files, canonical)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (s *Scanner) isIgnored(rel string) bool {
	for _, pattern := range s.ignores {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// isIgnoredDir prunes directories matched by "**/<dir>/**"-style patterns so
// the walk does not descend into ignored trees.
func (s *Scanner) isIgnoredDir(rel string) bool {
	for _, pattern := range s.ignores {
		trimmed := strings.TrimSuffix(pattern, "/**")
		if trimmed == pattern {
			continue
		}
		if ok, err := doublestar.Match(trimmed, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func loadIgnoreFile(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}
