package config

import (
	"log/slog"
	"strings"

	"github.com/archlint/archlint/internal/tsconfig"
)

// EnrichFromTsConfig inherits path aliases and exclude patterns from the
// project's TypeScript configuration. Aliases already present in the archlint
// config take precedence. Failures only produce a warning — a broken
// tsconfig must not sink a scan.
func (c *Config) EnrichFromTsConfig(projectRoot string) {
	explicit := ""
	if c.TsConfig != nil {
		explicit = c.TsConfig.Path
	}

	ts, err := tsconfig.FindAndLoad(projectRoot, explicit)
	if err != nil {
		slog.Warn("failed to load tsconfig; aliases and excludes from tsconfig will not apply", "error", err)
		return
	}
	if ts == nil {
		return
	}

	if opts := ts.CompilerOptions; opts != nil {
		c.applyTsAliases(opts)
		if opts.OutDir != "" {
			c.addIgnorePattern(opts.OutDir)
		}
	}
	for _, exclude := range ts.Exclude {
		c.addIgnorePattern(exclude)
	}
}

func (c *Config) applyTsAliases(opts *tsconfig.CompilerOptions) {
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	for alias, targets := range opts.Paths {
		if len(targets) == 0 {
			continue
		}
		if _, exists := c.Aliases[alias]; exists {
			continue
		}
		target := targets[0]
		var actual string
		if baseURL == "" {
			if strings.HasPrefix(target, "./") || strings.HasPrefix(target, "/") {
				actual = target
			} else {
				actual = "./" + target
			}
		} else {
			actual = baseURL + "/" + target
		}
		c.Aliases[alias] = actual
	}
}

// addIgnorePattern normalizes a tsconfig path into a directory glob unless it
// already carries wildcards.
func (c *Config) addIgnorePattern(path string) {
	normalized := strings.ReplaceAll(path, "\\", "/")
	normalized = strings.Trim(normalized, "/")
	normalized = strings.TrimPrefix(normalized, "./")
	if normalized == "" {
		return
	}
	for _, part := range strings.Split(normalized, "/") {
		if part == ".." {
			return
		}
	}

	pattern := normalized
	if !strings.Contains(normalized, "*") {
		pattern = "**/" + normalized + "/**"
	}

	for _, existing := range c.Ignore {
		if existing == pattern {
			return
		}
	}
	c.Ignore = append(c.Ignore, pattern)
}
