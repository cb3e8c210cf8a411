package detect

import (
	"fmt"
	"sort"

	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/graph"
)

func init() {
	Register(Info{
		ID:             "sdp_violation",
		Name:           "Stable Dependency Principle Detector",
		Description:    "Detects stable modules depending on unstable ones",
		DefaultEnabled: false,
		Category:       CategoryGraphBased,
	}, func(_ *config.Config) Detector { return &sdpViolationDetector{} })
}

type sdpViolationDetector struct{}

func (d *sdpViolationDetector) Info() Info {
	info, _ := InfoFor("sdp_violation")
	return info
}

func (d *sdpViolationDetector) Detect(ctx *Context) []ArchSmell {
	var smells []ArchSmell
	for _, node := range ctx.Graph.Nodes() {
		fromPath := ctx.Graph.Path(node)
		rule := ctx.RuleForFile("sdp_violation", fromPath)
		if rule == nil {
			continue
		}

		minFanTotal := rule.IntOption("min_fan_total", 5)
		instabilityDiff := rule.FloatOption("instability_diff", 0.3)

		if ctx.Graph.FanIn(node)+ctx.Graph.FanOut(node) < minFanTotal {
			continue
		}

		fromI := instability(ctx.Graph, node)
		for _, toNode := range ctx.Graph.Dependencies(node) {
			toI := instability(ctx.Graph, toNode)
			if fromI >= toI || toI-fromI <= instabilityDiff {
				continue
			}

			toPath := ctx.Graph.Path(toNode)
			loc := Location{File: fromPath, Description: fmt.Sprintf("I=%.2f depends on I=%.2f", fromI, toI)}
			if edge := ctx.Graph.EdgeBetween(node, toNode); edge != nil {
				loc.Line = edge.ImportLine
				loc.Range = edge.ImportRange
			}

			smells = append(smells, ArchSmell{
				Kind:      KindSdpViolation,
				Severity:  rule.Severity,
				Files:     []string{fromPath, toPath},
				Details:   Details{FromI: fromI, ToI: toI},
				Locations: []Location{loc},
			})
		}
	}

	sort.Slice(smells, func(i, j int) bool {
		if smells[i].Files[0] != smells[j].Files[0] {
			return smells[i].Files[0] < smells[j].Files[0]
		}
		return smells[i].Files[1] < smells[j].Files[1]
	})
	return smells
}

// instability is fan_out / (fan_in + fan_out); 0 for isolated nodes.
func instability(g *graph.DependencyGraph, node graph.NodeID) float64 {
	fanIn := g.FanIn(node)
	fanOut := g.FanOut(node)
	if fanIn+fanOut == 0 {
		return 0
	}
	return float64(fanOut) / float64(fanIn+fanOut)
}
