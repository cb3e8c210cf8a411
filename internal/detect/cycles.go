package detect

import (
	"sort"

	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/graph"
)

func init() {
	Register(Info{
		ID:             "cycles",
		Name:           "Cycle Detector",
		Description:    "Detects circular dependency clusters between files",
		DefaultEnabled: true,
		Category:       CategoryGraphBased,
	}, func(_ *config.Config) Detector { return &cycleDetector{} })
}

type cycleDetector struct{}

func (d *cycleDetector) Info() Info {
	info, _ := InfoFor("cycles")
	return info
}

// Detect reports one smell per strongly connected component rather than one
// per elementary cycle: a tangled cluster of files is one problem, and the
// number of elementary cycles through it is combinatorial noise.
func (d *cycleDetector) Detect(ctx *Context) []ArchSmell {
	rule := ctx.Rule("cycles")
	if rule == nil {
		return nil
	}

	maxHotspots := rule.IntOption("max_hotspots", 3)

	var smells []ArchSmell
	for _, component := range ctx.Graph.CycleComponents() {
		files := make([]string, 0, len(component))
		skip := false
		for _, node := range component {
			path := ctx.Graph.Path(node)
			if ctx.RuleForFile("cycles", path) == nil {
				skip = true
				break
			}
			files = append(files, path)
		}
		if skip {
			continue
		}
		sort.Strings(files)

		smells = append(smells, ArchSmell{
			Kind:     KindCyclicDependencyCluster,
			Severity: rule.Severity,
			Files:    files,
			Metrics: []Metric{
				NumMetric("cycleLength", float64(len(files))),
			},
			Cluster: d.clusterInfo(ctx, component, maxHotspots),
		})
	}

	sort.Slice(smells, func(i, j int) bool { return smells[i].Files[0] < smells[j].Files[0] })
	return smells
}

// clusterInfo computes the hotspots (top combined-degree members) and the
// critical edges (edges whose removal splits the cluster, scored by endpoint
// degree).
func (d *cycleDetector) clusterInfo(ctx *Context, component []graph.NodeID, maxHotspots int) *CycleCluster {
	inCluster := make(map[graph.NodeID]bool, len(component))
	for _, n := range component {
		inCluster[n] = true
	}

	hotspots := make([]Hotspot, 0, len(component))
	for _, n := range component {
		hotspots = append(hotspots, Hotspot{
			File:   ctx.Relative(ctx.Graph.Path(n)),
			FanIn:  ctx.Graph.FanIn(n),
			FanOut: ctx.Graph.FanOut(n),
		})
	}
	sort.Slice(hotspots, func(i, j int) bool {
		di := hotspots[i].FanIn + hotspots[i].FanOut
		dj := hotspots[j].FanIn + hotspots[j].FanOut
		if di != dj {
			return di > dj
		}
		return hotspots[i].File < hotspots[j].File
	})
	if len(hotspots) > maxHotspots {
		hotspots = hotspots[:maxHotspots]
	}

	cluster := &CycleCluster{Hotspots: hotspots}
	cluster.CriticalEdges = d.criticalEdges(ctx, component, inCluster)
	return cluster
}

// criticalEdges finds intra-cluster edges whose removal would break the
// component apart: for each candidate edge, a breadth-first search inside the
// cluster checks whether its target is still reachable from its source
// without it. Only clusters small enough for the quadratic check are analyzed.
func (d *cycleDetector) criticalEdges(ctx *Context, component []graph.NodeID, inCluster map[graph.NodeID]bool) []CriticalEdge {
	const maxClusterForEdgeAnalysis = 20
	if len(component) < 2 || len(component) > maxClusterForEdgeAnalysis {
		return nil
	}

	type pair struct{ from, to graph.NodeID }
	var edges []pair
	seen := map[pair]bool{}
	for _, n := range component {
		for _, to := range ctx.Graph.Dependencies(n) {
			p := pair{n, to}
			if inCluster[to] && !seen[p] {
				seen[p] = true
				edges = append(edges, p)
			}
		}
	}

	var critical []CriticalEdge
	for _, candidate := range edges {
		if d.splitsCluster(ctx, component, inCluster, candidate.from, candidate.to) {
			score := ctx.Graph.FanIn(candidate.from) + ctx.Graph.FanOut(candidate.from) +
				ctx.Graph.FanIn(candidate.to) + ctx.Graph.FanOut(candidate.to)
			critical = append(critical, CriticalEdge{
				From:  ctx.Relative(ctx.Graph.Path(candidate.from)),
				To:    ctx.Relative(ctx.Graph.Path(candidate.to)),
				Score: score,
			})
		}
	}

	sort.Slice(critical, func(i, j int) bool {
		if critical[i].Score != critical[j].Score {
			return critical[i].Score > critical[j].Score
		}
		if critical[i].From != critical[j].From {
			return critical[i].From < critical[j].From
		}
		return critical[i].To < critical[j].To
	})
	return critical
}

// splitsCluster checks mutual reachability within the cluster after dropping
// the from→to edge.
func (d *cycleDetector) splitsCluster(ctx *Context, component []graph.NodeID, inCluster map[graph.NodeID]bool, dropFrom, dropTo graph.NodeID) bool {
	reachable := map[graph.NodeID]bool{dropFrom: true}
	queue := []graph.NodeID{dropFrom}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, next := range ctx.Graph.Dependencies(n) {
			if !inCluster[next] || reachable[next] {
				continue
			}
			if n == dropFrom && next == dropTo {
				continue
			}
			reachable[next] = true
			queue = append(queue, next)
		}
	}
	return !reachable[dropTo]
}
