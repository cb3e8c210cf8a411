package detect

import (
	"fmt"
	"sort"

	"github.com/archlint/archlint/internal/config"
)

func init() {
	Register(Info{
		ID:             "long_params",
		Name:           "Long Parameter List Detector",
		Description:    "Detects functions with too many parameters",
		DefaultEnabled: true,
		Category:       CategoryFileLocal,
	}, func(_ *config.Config) Detector { return &longParamsDetector{} })
}

type longParamsDetector struct{}

func (d *longParamsDetector) Info() Info {
	info, _ := InfoFor("long_params")
	return info
}

func (d *longParamsDetector) Detect(ctx *Context) []ArchSmell {
	var paths []string
	for path := range ctx.FunctionComplexity {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var smells []ArchSmell
	for _, path := range paths {
		rule := ctx.RuleForFile("long_params", path)
		if rule == nil {
			continue
		}
		maxParams := rule.IntOption("max_params", 5)
		ignoreConstructors := rule.BoolOption("ignore_constructors", true)

		for _, fc := range ctx.FunctionComplexity[path] {
			if ignoreConstructors && fc.IsConstructor {
				continue
			}
			if fc.ParamCount <= maxParams {
				continue
			}
			smells = append(smells, ArchSmell{
				Kind:     KindLongParameterList,
				Severity: rule.Severity,
				Files:    []string{path},
				Metrics:  []Metric{NumMetric("count", float64(fc.ParamCount))},
				Details:  Details{Function: fc.Name, Count: fc.ParamCount},
				Locations: []Location{{
					File: path, Line: fc.Line, Range: fc.Range,
					Description: fmt.Sprintf("%s (%d parameters)", fc.Name, fc.ParamCount),
				}},
			})
		}
	}
	return smells
}
