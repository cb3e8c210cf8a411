package detect

import (
	"fmt"
	"sort"

	"github.com/archlint/archlint/internal/config"
)

func init() {
	Register(Info{
		ID:             "deep_nesting",
		Name:           "Deep Nesting Detector",
		Description:    "Detects functions with deeply nested control flow",
		DefaultEnabled: true,
		Category:       CategoryFileLocal,
	}, func(_ *config.Config) Detector { return &deepNestingDetector{} })
}

type deepNestingDetector struct{}

func (d *deepNestingDetector) Info() Info {
	info, _ := InfoFor("deep_nesting")
	return info
}

func (d *deepNestingDetector) Detect(ctx *Context) []ArchSmell {
	var paths []string
	for path := range ctx.FunctionComplexity {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var smells []ArchSmell
	for _, path := range paths {
		rule := ctx.RuleForFile("deep_nesting", path)
		if rule == nil {
			continue
		}
		maxDepth := rule.IntOption("max_depth", 4)

		for _, fc := range ctx.FunctionComplexity[path] {
			if fc.MaxDepth <= maxDepth {
				continue
			}
			smells = append(smells, ArchSmell{
				Kind:     KindDeepNesting,
				Severity: rule.Severity,
				Files:    []string{path},
				Metrics:  []Metric{NumMetric("depth", float64(fc.MaxDepth))},
				Details:  Details{Function: fc.Name, Depth: fc.MaxDepth},
				Locations: []Location{{
					File: path, Line: fc.Line, Range: fc.Range,
					Description: fmt.Sprintf("%s (depth %d)", fc.Name, fc.MaxDepth),
				}},
			})
		}
	}
	return smells
}
