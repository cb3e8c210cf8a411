package detect

import (
	"sort"

	"github.com/archlint/archlint/internal/config"
)

func init() {
	Register(Info{
		ID:             "dead_code",
		Name:           "Dead Code Detector",
		Description:    "Detects files that are never imported and never executed",
		DefaultEnabled: true,
		Category:       CategoryGlobal,
	}, func(_ *config.Config) Detector { return &deadCodeDetector{} })
}

type deadCodeDetector struct{}

func (d *deadCodeDetector) Info() Info {
	info, _ := InfoFor("dead_code")
	return info
}

// Detect finds files no live code can reach. A file is dead when it is not
// an entry point (configured, script, or framework), not dynamically loaded,
// and either exports nothing while having no runtime code, or none of its
// exports is imported by a non-dead file. The sweep iterates to a fixed
// point so chains of files that only feed each other die together.
func (d *deadCodeDetector) Detect(ctx *Context) []ArchSmell {
	rule := ctx.Rule("dead_code")
	if rule == nil {
		return nil
	}

	configured := map[string]bool{}
	for _, ep := range ctx.Config.EntryPoints {
		configured[ep] = true
	}

	// alive holds the files exempt from dead-code analysis; candidates lists
	// the rest.
	alive := map[string]bool{}
	var candidates []string
	for path := range ctx.FileSymbols {
		if ctx.RuleForFile("dead_code", path) == nil ||
			configured[ctx.Relative(path)] ||
			ctx.ScriptEntryPoints[path] ||
			ctx.IsFrameworkEntryPoint(path) ||
			ctx.IsDynamicallyLoaded(path) {
			alive[path] = true
			continue
		}
		candidates = append(candidates, path)
	}

	dead := map[string]bool{}
	for {
		changed := false
		for _, path := range candidates {
			if dead[path] {
				continue
			}
			if d.isDead(ctx, path, dead) {
				dead[path] = true
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	var files []string
	for path := range dead {
		files = append(files, path)
	}
	sort.Strings(files)

	smells := make([]ArchSmell, 0, len(files))
	for _, path := range files {
		fileRule := ctx.RuleForFile("dead_code", path)
		if fileRule == nil {
			continue
		}
		smells = append(smells, ArchSmell{
			Kind:     KindDeadCode,
			Severity: fileRule.Severity,
			Files:    []string{path},
			Metrics: []Metric{
				NumMetric("lines", float64(ctx.FileMetrics[path].Lines)),
			},
			Locations: []Location{{File: path, Line: 1, Description: "file is never imported"}},
		})
	}
	return smells
}

func (d *deadCodeDetector) isDead(ctx *Context, path string, dead map[string]bool) bool {
	symbols := ctx.FileSymbols[path]
	if symbols == nil {
		return false
	}

	if len(symbols.Exports) == 0 {
		return !symbols.HasRuntimeCode
	}

	// Exported: dead iff every importer is itself dead.
	node, ok := ctx.Graph.Node(path)
	if !ok {
		return true
	}
	for _, importer := range ctx.Graph.Dependents(node) {
		if !dead[ctx.Graph.Path(importer)] {
			return false
		}
	}
	return true
}
