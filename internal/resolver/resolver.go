// Package resolver maps import specifiers to concrete files on disk:
// relative paths, configured aliases, and bare specifiers probed against the
// project root and src directory, with index-file and ESM extension
// rewriting. A specifier that resolves to nothing is not an error — it is an
// external package.
package resolver

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// extensions is the fixed probe order.
var extensions = []string{"ts", "tsx", "js", "jsx", "mjs", "cjs"}

// PathResolver resolves import specifiers relative to a project root. It is
// read-only after construction and safe for concurrent use.
type PathResolver struct {
	root    string
	aliases []aliasEntry
}

type aliasEntry struct {
	prefix string
	target string
}

// New creates a resolver with the configured alias map. Alias prefixes are
// tried longest-first so "@app/core/*" wins over "@app/*".
func New(root string, aliases map[string]string) *PathResolver {
	entries := make([]aliasEntry, 0, len(aliases))
	for prefix, target := range aliases {
		entries = append(entries, aliasEntry{
			prefix: strings.TrimSuffix(prefix, "*"),
			target: strings.TrimSuffix(target, "*"),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].prefix) != len(entries[j].prefix) {
			return len(entries[i].prefix) > len(entries[j].prefix)
		}
		return entries[i].prefix < entries[j].prefix
	})
	return &PathResolver{root: root, aliases: entries}
}

// Resolve maps specifier, imported from fromFile, to an absolute file path.
// The empty string means the specifier does not resolve inside the project.
func (r *PathResolver) Resolve(specifier, fromFile string) string {
	if strings.HasPrefix(specifier, ".") {
		return r.probe(filepath.Join(filepath.Dir(fromFile), specifier))
	}

	for _, alias := range r.aliases {
		if strings.HasPrefix(specifier, alias.prefix) {
			rewritten := alias.target + specifier[len(alias.prefix):]
			if !filepath.IsAbs(rewritten) {
				rewritten = filepath.Join(r.root, rewritten)
			}
			if resolved := r.probe(rewritten); resolved != "" {
				return resolved
			}
		}
	}

	// baseUrl-style fallback: <root>/s then <root>/src/s.
	if resolved := r.probe(filepath.Join(r.root, specifier)); resolved != "" {
		return resolved
	}
	return r.probe(filepath.Join(r.root, "src", specifier))
}

// probe tries a candidate base path: exact file, ESM .js→.ts rewrite,
// appended extensions, then index files if base is a directory.
func (r *PathResolver) probe(base string) string {
	if isFile(base) {
		return canonical(base)
	}

	// TS ESM style: source imports name the compiled .js, the project holds .ts.
	if strings.HasSuffix(base, ".js") {
		if ts := strings.TrimSuffix(base, ".js") + ".ts"; isFile(ts) {
			return canonical(ts)
		}
	}
	if strings.HasSuffix(base, ".jsx") {
		if tsx := strings.TrimSuffix(base, ".jsx") + ".tsx"; isFile(tsx) {
			return canonical(tsx)
		}
	}

	for _, ext := range extensions {
		if candidate := base + "." + ext; isFile(candidate) {
			return canonical(candidate)
		}
	}

	if isDir(base) {
		for _, ext := range extensions {
			if index := filepath.Join(base, "index."+ext); isFile(index) {
				return canonical(index)
			}
		}
	}

	return ""
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func canonical(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
