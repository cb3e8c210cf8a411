package detect

import (
	"fmt"
	"sort"

	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/parser"
)

func init() {
	Register(Info{
		ID:             "cyclomatic_complexity",
		Name:           "Cyclomatic Complexity Detector",
		Description:    "Detects functions with too many decision points",
		DefaultEnabled: true,
		Category:       CategoryFileLocal,
	}, func(_ *config.Config) Detector {
		return &complexityDetector{
			id:   "cyclomatic_complexity",
			kind: KindHighCyclomatic,
			measure: func(fc *parser.FunctionComplexity) int {
				return fc.CyclomaticComplexity
			},
		}
	})

	Register(Info{
		ID:             "cognitive_complexity",
		Name:           "Cognitive Complexity Detector",
		Description:    "Detects functions that are hard to read due to nested logic",
		DefaultEnabled: true,
		Category:       CategoryFileLocal,
	}, func(_ *config.Config) Detector {
		return &complexityDetector{
			id:   "cognitive_complexity",
			kind: KindHighCognitive,
			measure: func(fc *parser.FunctionComplexity) int {
				return fc.CognitiveComplexity
			},
		}
	})
}

// complexityDetector serves both complexity rules; only the measured field
// and the rule id differ.
type complexityDetector struct {
	id      string
	kind    Kind
	measure func(*parser.FunctionComplexity) int
}

func (d *complexityDetector) Info() Info {
	info, _ := InfoFor(d.id)
	return info
}

func (d *complexityDetector) Detect(ctx *Context) []ArchSmell {
	var paths []string
	for path := range ctx.FunctionComplexity {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var smells []ArchSmell
	for _, path := range paths {
		rule := ctx.RuleForFile(d.id, path)
		if rule == nil {
			continue
		}
		threshold := rule.IntOption("max_complexity", rule.IntOption("function_threshold", 15))

		for _, fc := range ctx.FunctionComplexity[path] {
			value := d.measure(&fc)
			if value < threshold {
				continue
			}
			smells = append(smells, ArchSmell{
				Kind:     d.kind,
				Severity: rule.Severity,
				Files:    []string{path},
				Metrics: []Metric{
					NumMetric("complexity", float64(value)),
					NumMetric("threshold", float64(threshold)),
				},
				Details: Details{Function: fc.Name, Complexity: value, Threshold: threshold},
				Locations: []Location{{
					File: path, Line: fc.Line, Range: fc.Range,
					Description: fmt.Sprintf("%s (complexity %d)", fc.Name, value),
				}},
			})
		}
	}
	return smells
}
