package detect

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/archlint/archlint/internal/config"
)

func init() {
	Register(Info{
		ID:             "test_leakage",
		Name:           "Test Leakage Detector",
		Description:    "Detects production modules importing test files",
		DefaultEnabled: false,
		Category:       CategoryGraphBased,
	}, func(_ *config.Config) Detector { return &testLeakageDetector{} })
}

var defaultTestPatterns = []string{
	"**/*.test.ts",
	"**/*.test.js",
	"**/*.spec.ts",
	"**/*.spec.js",
	"**/*.mock.ts",
	"**/*.mock.js",
	"**/__tests__/**",
	"**/__mocks__/**",
	"**/__fixtures__/**",
	"**/test/**",
	"**/tests/**",
}

type testLeakageDetector struct{}

func (d *testLeakageDetector) Info() Info {
	info, _ := InfoFor("test_leakage")
	return info
}

func (d *testLeakageDetector) Detect(ctx *Context) []ArchSmell {
	rule := ctx.Rule("test_leakage")
	if rule == nil {
		return nil
	}
	patterns := rule.StringsOption("test_patterns", defaultTestPatterns)

	var smells []ArchSmell
	for _, node := range ctx.Graph.Nodes() {
		fromPath := ctx.Graph.Path(node)
		if isTestFile(ctx.Relative(fromPath), patterns) {
			continue
		}
		fileRule := ctx.RuleForFile("test_leakage", fromPath)
		if fileRule == nil {
			continue
		}

		for _, toNode := range ctx.Graph.Dependencies(node) {
			toPath := ctx.Graph.Path(toNode)
			if !isTestFile(ctx.Relative(toPath), patterns) {
				continue
			}

			loc := Location{File: fromPath, Description: "imports test file " + ctx.Relative(toPath)}
			if edge := ctx.Graph.EdgeBetween(node, toNode); edge != nil {
				loc.Line = edge.ImportLine
				loc.Range = edge.ImportRange
			}

			smells = append(smells, ArchSmell{
				Kind:      KindTestLeakage,
				Severity:  fileRule.Severity,
				Files:     []string{fromPath, toPath},
				Details:   Details{TestFile: toPath},
				Locations: []Location{loc},
			})
		}
	}

	sort.Slice(smells, func(i, j int) bool {
		if smells[i].Files[0] != smells[j].Files[0] {
			return smells[i].Files[0] < smells[j].Files[0]
		}
		return smells[i].Files[1] < smells[j].Files[1]
	})
	return smells
}

func isTestFile(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
	}
	// Directory-name fallback for paths the globs miss.
	for _, part := range strings.Split(filepath.ToSlash(relPath), "/") {
		switch part {
		case "__tests__", "__mocks__", "__fixtures__":
			return true
		}
	}
	return false
}
