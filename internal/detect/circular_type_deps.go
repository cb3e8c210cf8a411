package detect

import (
	"sort"

	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/graph"
)

func init() {
	Register(Info{
		ID:             "circular_type_deps",
		Name:           "Circular Type Dependency Detector",
		Description:    "Detects cycles formed exclusively by type-only imports",
		DefaultEnabled: false,
		Category:       CategoryGraphBased,
	}, func(_ *config.Config) Detector { return &circularTypeDepsDetector{} })
}

type circularTypeDepsDetector struct{}

func (d *circularTypeDepsDetector) Info() Info {
	info, _ := InfoFor("circular_type_deps")
	return info
}

// Detect builds a sub-graph restricted to pairs whose every edge is
// type-only, then reports its non-trivial SCCs. A pair with at least one
// value import belongs to the regular cycle detector instead.
func (d *circularTypeDepsDetector) Detect(ctx *Context) []ArchSmell {
	rule := ctx.Rule("circular_type_deps")
	if rule == nil {
		return nil
	}

	typeGraph := graph.New()
	for _, node := range ctx.Graph.Nodes() {
		fromPath := ctx.Graph.Path(node)
		if ctx.RuleForFile("circular_type_deps", fromPath) == nil {
			continue
		}
		from := typeGraph.AddFile(fromPath)

		for _, toNode := range ctx.Graph.Dependencies(node) {
			edges := ctx.Graph.EdgesBetween(node, toNode)
			allTypeOnly := len(edges) > 0
			for _, edge := range edges {
				if !edge.TypeOnly {
					allTypeOnly = false
					break
				}
			}
			if !allTypeOnly {
				continue
			}
			to := typeGraph.AddFile(ctx.Graph.Path(toNode))
			typeGraph.AddDependency(from, to, *edges[0])
		}
	}

	var smells []ArchSmell
	for _, component := range typeGraph.CycleComponents() {
		if len(component) < 2 {
			continue
		}
		files := make([]string, 0, len(component))
		for _, n := range component {
			files = append(files, typeGraph.Path(n))
		}
		sort.Strings(files)

		// The severity of the strictest member rule wins.
		severity := config.SeverityLow
		for _, f := range files {
			if s := ctx.ResolveRule("circular_type_deps", f).Severity; s > severity {
				severity = s
			}
		}

		smells = append(smells, ArchSmell{
			Kind:     KindCircularTypeDependency,
			Severity: severity,
			Files:    files,
			Metrics:  []Metric{NumMetric("cycleLength", float64(len(files)))},
		})
	}

	sort.Slice(smells, func(i, j int) bool { return smells[i].Files[0] < smells[j].Files[0] })
	return smells
}
