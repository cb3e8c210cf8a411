package detect

import (
	"sort"

	"github.com/archlint/archlint/internal/config"
)

func init() {
	Register(Info{
		ID:             "god_module",
		Name:           "God Module Detector",
		Description:    "Detects large modules with many incoming and outgoing dependencies",
		DefaultEnabled: true,
		Category:       CategoryGraphBased,
	}, func(_ *config.Config) Detector { return &godModuleDetector{} })
}

type godModuleDetector struct{}

func (d *godModuleDetector) Info() Info {
	info, _ := InfoFor("god_module")
	return info
}

func (d *godModuleDetector) Detect(ctx *Context) []ArchSmell {
	gitAvailable := ctx.GitAvailable()

	var smells []ArchSmell
	for _, node := range ctx.Graph.Nodes() {
		path := ctx.Graph.Path(node)
		rule := ctx.RuleForFile("god_module", path)
		if rule == nil {
			continue
		}

		fanInThreshold := rule.IntOption("fan_in", 10)
		fanOutThreshold := rule.IntOption("fan_out", 10)
		churnThreshold := rule.IntOption("churn", 20)

		fanIn := ctx.Graph.FanIn(node)
		fanOut := ctx.Graph.FanOut(node)
		churn := ctx.ChurnMap[path]

		// Without usable git data the churn gate is waived.
		churnOK := !gitAvailable || churn >= churnThreshold

		if fanIn >= fanInThreshold && fanOut >= fanOutThreshold && churnOK {
			smells = append(smells, ArchSmell{
				Kind:     KindGodModule,
				Severity: rule.Severity,
				Files:    []string{path},
				Metrics: []Metric{
					NumMetric("fanIn", float64(fanIn)),
					NumMetric("fanOut", float64(fanOut)),
					NumMetric("churn", float64(churn)),
				},
				Details: Details{FanIn: fanIn, FanOut: fanOut, Churn: churn},
			})
		}
	}

	sort.Slice(smells, func(i, j int) bool { return smells[i].Files[0] < smells[j].Files[0] })
	return smells
}
