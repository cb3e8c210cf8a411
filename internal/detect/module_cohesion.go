package detect

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/parser"
)

func init() {
	Register(Info{
		ID:             "module_cohesion",
		Name:           "Scattered Module Detector",
		Description:    "Detects modules whose exports are unrelated to each other",
		DefaultEnabled: false,
		Category:       CategoryFileLocal,
	}, func(_ *config.Config) Detector { return &moduleCohesionDetector{} })
}

type moduleCohesionDetector struct{}

func (d *moduleCohesionDetector) Info() Info {
	info, _ := InfoFor("module_cohesion")
	return info
}

func (d *moduleCohesionDetector) Detect(ctx *Context) []ArchSmell {
	var paths []string
	for path := range ctx.FileSymbols {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var smells []ArchSmell
	for _, path := range paths {
		rule := ctx.RuleForFile("module_cohesion", path)
		if rule == nil {
			continue
		}
		minExports := rule.IntOption("min_exports", 5)
		maxComponents := rule.IntOption("max_components", 2)

		symbols := ctx.FileSymbols[path]
		if len(symbols.Exports) < minExports || isBarrel(path, symbols) {
			continue
		}

		components := exportComponents(symbols.Exports)
		if components <= maxComponents {
			continue
		}

		smells = append(smells, ArchSmell{
			Kind:      KindScatteredModule,
			Severity:  rule.Severity,
			Files:     []string{path},
			Metrics:   []Metric{NumMetric("count", float64(components))},
			Details:   Details{Components: components},
			Locations: []Location{{File: path, Line: 1}},
		})
	}
	return smells
}

// isBarrel skips index files and files that only re-export.
func isBarrel(path string, symbols *parser.FileSymbols) bool {
	if strings.HasPrefix(filepath.Base(path), "index.") {
		return true
	}
	for _, export := range symbols.Exports {
		if export.Source == "" {
			return false
		}
	}
	return len(symbols.Exports) > 0
}

// exportComponents counts connected components in the export relationship
// graph: exports connect when they share used symbols or one uses the other.
func exportComponents(exports []parser.ExportedSymbol) int {
	n := len(exports)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if exportsRelated(&exports[i], &exports[j]) {
				parent[find(i)] = find(j)
			}
		}
	}

	components := map[int]bool{}
	for i := range parent {
		components[find(i)] = true
	}
	return len(components)
}

func exportsRelated(a, b *parser.ExportedSymbol) bool {
	for symbol := range a.UsedSymbols {
		if b.UsedSymbols[symbol] {
			return true
		}
	}
	return a.UsedSymbols[b.Name] || b.UsedSymbols[a.Name]
}
