// Package projectroot locates the project root for a target path by walking
// up until a project marker appears.
package projectroot

import (
	"os"
	"path/filepath"
)

var markers = []string{
	".git",
	"package.json",
	"pnpm-workspace.yaml",
	"tsconfig.json",
	"yarn.lock",
	"package-lock.json",
}

// Detect returns the nearest ancestor of target carrying a project marker,
// or the start directory itself when none is found.
func Detect(target string) string {
	start := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		start = filepath.Dir(target)
	}
	if canonical, err := filepath.EvalSymlinks(start); err == nil {
		start = canonical
	}
	if abs, err := filepath.Abs(start); err == nil {
		start = abs
	}

	current := start
	for {
		if isRoot(current) {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return start
		}
		current = parent
	}
}

func isRoot(dir string) bool {
	for _, marker := range markers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}
