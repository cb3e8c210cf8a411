package detect

import (
	"sort"

	"github.com/archlint/archlint/internal/config"
)

func init() {
	Register(Info{
		ID:             "unstable_interface",
		Name:           "Unstable Interface Detector",
		Description:    "Detects modules with high churn and many dependants",
		DefaultEnabled: false,
		Category:       CategoryGlobal,
	}, func(_ *config.Config) Detector { return &unstableInterfaceDetector{} })
}

type unstableInterfaceDetector struct{}

func (d *unstableInterfaceDetector) Info() Info {
	info, _ := InfoFor("unstable_interface")
	return info
}

func (d *unstableInterfaceDetector) Detect(ctx *Context) []ArchSmell {
	gitAvailable := ctx.GitAvailable()

	var smells []ArchSmell
	for _, node := range ctx.Graph.Nodes() {
		path := ctx.Graph.Path(node)
		rule := ctx.RuleForFile("unstable_interface", path)
		if rule == nil {
			continue
		}

		minChurn := rule.IntOption("min_churn", 10)
		minDependants := rule.IntOption("min_dependants", 5)
		scoreThreshold := rule.IntOption("score_threshold", 100)

		churn := ctx.ChurnMap[path]
		dependants := ctx.Graph.FanIn(node)
		score := churn * dependants

		// Churn gates are waived without usable git data.
		churnOK := !gitAvailable || churn >= minChurn
		scoreOK := !gitAvailable || score >= scoreThreshold

		if churnOK && scoreOK && dependants >= minDependants {
			smells = append(smells, ArchSmell{
				Kind:     KindUnstableInterface,
				Severity: rule.Severity,
				Files:    []string{path},
				Metrics: []Metric{
					NumMetric("fanIn", float64(dependants)),
					NumMetric("churn", float64(churn)),
				},
				Details: Details{Churn: churn, FanIn: dependants, Score: score},
			})
		}
	}

	sort.Slice(smells, func(i, j int) bool { return smells[i].Files[0] < smells[j].Files[0] })
	return smells
}
