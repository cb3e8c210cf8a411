package detect

import (
	"fmt"
	"sort"

	"github.com/archlint/archlint/internal/config"
)

func init() {
	Register(Info{
		ID:             "primitive_obsession",
		Name:           "Primitive Obsession Detector",
		Description:    "Detects functions with too many primitive parameters",
		DefaultEnabled: false,
		Category:       CategoryFileLocal,
	}, func(_ *config.Config) Detector { return &primitiveObsessionDetector{} })
}

type primitiveObsessionDetector struct{}

func (d *primitiveObsessionDetector) Info() Info {
	info, _ := InfoFor("primitive_obsession")
	return info
}

func (d *primitiveObsessionDetector) Detect(ctx *Context) []ArchSmell {
	var paths []string
	for path := range ctx.FunctionComplexity {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var smells []ArchSmell
	for _, path := range paths {
		rule := ctx.RuleForFile("primitive_obsession", path)
		if rule == nil {
			continue
		}
		maxPrimitives := rule.IntOption("max_primitives", 3)

		for _, fc := range ctx.FunctionComplexity[path] {
			if fc.PrimitiveParams <= maxPrimitives {
				continue
			}
			smells = append(smells, ArchSmell{
				Kind:     KindPrimitiveObsession,
				Severity: rule.Severity,
				Files:    []string{path},
				Metrics:  []Metric{NumMetric("primitives", float64(fc.PrimitiveParams))},
				Details:  Details{Function: fc.Name, Primitives: fc.PrimitiveParams},
				Locations: []Location{{
					File: path, Line: fc.Line, Range: fc.Range,
					Description: fmt.Sprintf("%s (%d primitive parameters)", fc.Name, fc.PrimitiveParams),
				}},
			})
		}
	}
	return smells
}
