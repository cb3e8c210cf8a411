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
		ID:             "feature_envy",
		Name:           "Feature Envy Detector",
		Description:    "Detects modules using more external symbols than their own",
		DefaultEnabled: false,
		Category:       CategoryGlobal,
	}, func(_ *config.Config) Detector { return &featureEnvyDetector{} })
}

type featureEnvyDetector struct{}

func (d *featureEnvyDetector) Info() Info {
	info, _ := InfoFor("feature_envy")
	return info
}

func (d *featureEnvyDetector) Detect(ctx *Context) []ArchSmell {
	var paths []string
	for path := range ctx.FileSymbols {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var smells []ArchSmell
	for _, path := range paths {
		rule := ctx.RuleForFile("feature_envy", path)
		if rule == nil {
			continue
		}
		ratioThreshold := rule.FloatOption("ratio", 3.0)

		symbols := ctx.FileSymbols[path]
		internal := countInternalRefs(symbols)
		external, bySource := countExternalRefs(symbols)

		ratio := float64(external) / (float64(internal) + 1.0)
		if ratio < ratioThreshold || external == 0 {
			continue
		}

		envied := mostEnviedModule(path, bySource)
		if envied == "" {
			continue
		}

		smells = append(smells, ArchSmell{
			Kind:     KindFeatureEnvy,
			Severity: rule.Severity,
			Files:    []string{path},
			Metrics: []Metric{
				NumMetric("ratio", ratio),
				NumMetric("count", float64(external)),
			},
			Details: Details{EnviedModule: envied, Ratio: ratio, Count: external},
		})
	}
	return smells
}

func countInternalRefs(symbols *parser.FileSymbols) int {
	refs := 0
	for def := range symbols.LocalDefinitions {
		if symbols.LocalUsages[def] {
			refs++
		}
	}
	for _, export := range symbols.Exports {
		if symbols.LocalUsages[export.Name] {
			refs++
		}
	}
	return refs
}

func countExternalRefs(symbols *parser.FileSymbols) (int, map[string]int) {
	refs := 0
	bySource := map[string]int{}
	for _, imp := range symbols.Imports {
		name := imp.Name
		if imp.Alias != "" {
			name = imp.Alias
		}
		if symbols.LocalUsages[name] {
			refs++
			bySource[imp.Source]++
		}
	}
	return refs, bySource
}

// mostEnviedModule picks the import source with the most used bindings,
// ties broken alphabetically for determinism.
func mostEnviedModule(path string, bySource map[string]int) string {
	best := ""
	bestCount := 0
	for source, count := range bySource {
		if count > bestCount || (count == bestCount && source < best) {
			best = source
			bestCount = count
		}
	}
	if best == "" {
		return ""
	}
	if strings.HasPrefix(best, ".") {
		return filepath.Join(filepath.Dir(path), best)
	}
	return best
}
