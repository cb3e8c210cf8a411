package detect

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/graph"
)

func init() {
	Register(Info{
		ID:             "package_cycles",
		Name:           "Package Cycle Detector",
		Description:    "Detects circular dependencies between folder-level packages",
		DefaultEnabled: false,
		Category:       CategoryGraphBased,
	}, func(_ *config.Config) Detector { return &packageCycleDetector{} })
}

type packageCycleDetector struct{}

func (d *packageCycleDetector) Info() Info {
	info, _ := InfoFor("package_cycles")
	return info
}

func (d *packageCycleDetector) Detect(ctx *Context) []ArchSmell {
	rule := ctx.Rule("package_cycles")
	if rule == nil {
		return nil
	}
	depth := rule.IntOption("package_depth", 2)

	pkgGraph := graph.New()
	seen := map[[2]graph.NodeID]bool{}

	ctx.Graph.Edges(func(from, to graph.NodeID, _ *graph.EdgeData) {
		fromPkg := packageOf(ctx, ctx.Graph.Path(from), depth)
		toPkg := packageOf(ctx, ctx.Graph.Path(to), depth)
		if fromPkg == toPkg {
			return
		}
		a := pkgGraph.AddFile(fromPkg)
		b := pkgGraph.AddFile(toPkg)
		key := [2]graph.NodeID{a, b}
		if !seen[key] {
			seen[key] = true
			pkgGraph.AddDependency(a, b, graph.EdgeData{})
		}
	})

	var smells []ArchSmell
	for _, component := range pkgGraph.CycleComponents() {
		packages := make([]string, 0, len(component))
		for _, n := range component {
			packages = append(packages, pkgGraph.Path(n))
		}
		sort.Strings(packages)

		smells = append(smells, ArchSmell{
			Kind:     KindPackageCycle,
			Severity: rule.Severity,
			Files:    packages,
			Details:  Details{Packages: packages},
			Metrics:  []Metric{NumMetric("cycleLength", float64(len(packages)))},
		})
	}

	sort.Slice(smells, func(i, j int) bool { return smells[i].Files[0] < smells[j].Files[0] })
	return smells
}

// packageOf maps a file to its logical package: the first depth components
// of its project-relative directory.
func packageOf(ctx *Context, path string, depth int) string {
	rel := ctx.Relative(filepath.Dir(path))
	if rel == "." {
		return "root"
	}
	parts := strings.Split(rel, "/")
	if len(parts) > depth {
		parts = parts[:depth]
	}
	return strings.Join(parts, "/")
}
