package detect

import (
	"sort"

	"github.com/archlint/archlint/internal/config"
)

func init() {
	Register(Info{
		ID:             "hub_module",
		Name:           "Hub Module Detector",
		Description:    "Detects pass-through hubs with many connections but little logic",
		DefaultEnabled: false,
		Category:       CategoryGraphBased,
	}, func(_ *config.Config) Detector { return &hubModuleDetector{} })
}

type hubModuleDetector struct{}

func (d *hubModuleDetector) Info() Info {
	info, _ := InfoFor("hub_module")
	return info
}

func (d *hubModuleDetector) Detect(ctx *Context) []ArchSmell {
	var smells []ArchSmell
	for _, node := range ctx.Graph.Nodes() {
		path := ctx.Graph.Path(node)
		rule := ctx.RuleForFile("hub_module", path)
		if rule == nil {
			continue
		}

		minFanIn := rule.IntOption("min_fan_in", 5)
		minFanOut := rule.IntOption("min_fan_out", 5)
		maxComplexity := rule.IntOption("max_complexity", 5)

		fanIn := ctx.Graph.FanIn(node)
		fanOut := ctx.Graph.FanOut(node)
		if fanIn < minFanIn || fanOut < minFanOut {
			continue
		}

		// A hub is a module everything flows through without real logic of
		// its own; real logic disqualifies it.
		peak := 0
		for _, fc := range ctx.FunctionComplexity[path] {
			if fc.CyclomaticComplexity > peak {
				peak = fc.CyclomaticComplexity
			}
		}
		if peak > maxComplexity {
			continue
		}

		smells = append(smells, ArchSmell{
			Kind:     KindHubModule,
			Severity: rule.Severity,
			Files:    []string{path},
			Metrics: []Metric{
				NumMetric("fanIn", float64(fanIn)),
				NumMetric("fanOut", float64(fanOut)),
			},
			Details: Details{FanIn: fanIn, FanOut: fanOut, Complexity: peak},
		})
	}

	sort.Slice(smells, func(i, j int) bool { return smells[i].Files[0] < smells[j].Files[0] })
	return smells
}
