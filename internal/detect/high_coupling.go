package detect

import (
	"sort"

	"github.com/archlint/archlint/internal/config"
)

func init() {
	Register(Info{
		ID:             "high_coupling",
		Name:           "High Coupling Detector (CBO)",
		Description:    "Detects modules with too many combined dependencies",
		DefaultEnabled: false,
		Category:       CategoryGraphBased,
	}, func(_ *config.Config) Detector { return &highCouplingDetector{} })
}

type highCouplingDetector struct{}

func (d *highCouplingDetector) Info() Info {
	info, _ := InfoFor("high_coupling")
	return info
}

func (d *highCouplingDetector) Detect(ctx *Context) []ArchSmell {
	var smells []ArchSmell
	for _, node := range ctx.Graph.Nodes() {
		path := ctx.Graph.Path(node)
		rule := ctx.RuleForFile("high_coupling", path)
		if rule == nil {
			continue
		}
		maxCbo := rule.IntOption("max_cbo", 20)

		cbo := ctx.Graph.FanIn(node) + ctx.Graph.FanOut(node)
		if cbo <= maxCbo {
			continue
		}
		smells = append(smells, ArchSmell{
			Kind:     KindHighCoupling,
			Severity: rule.Severity,
			Files:    []string{path},
			Metrics:  []Metric{NumMetric("cbo", float64(cbo))},
			Details:  Details{Cbo: cbo},
		})
	}

	sort.Slice(smells, func(i, j int) bool { return smells[i].Files[0] < smells[j].Files[0] })
	return smells
}
