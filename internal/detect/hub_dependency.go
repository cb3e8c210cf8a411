package detect

import (
	"sort"

	"github.com/archlint/archlint/internal/config"
)

func init() {
	Register(Info{
		ID:             "hub_dependency",
		Name:           "Hub Dependency Detector",
		Description:    "Detects external packages imported by too many files",
		DefaultEnabled: false,
		Category:       CategoryGlobal,
	}, func(_ *config.Config) Detector { return &hubDependencyDetector{} })
}

type hubDependencyDetector struct{}

func (d *hubDependencyDetector) Info() Info {
	info, _ := InfoFor("hub_dependency")
	return info
}

func (d *hubDependencyDetector) Detect(ctx *Context) []ArchSmell {
	rule := ctx.Rule("hub_dependency")
	if rule == nil {
		return nil
	}
	minDependents := rule.IntOption("min_dependents", rule.IntOption("min_dependants", 20))
	ignore := rule.StringsOption("ignore_packages", []string{"react", "lodash", "typescript"})

	usage := packageUsage(ctx)

	var packages []string
	for pkg := range usage {
		packages = append(packages, pkg)
	}
	sort.Strings(packages)

	var smells []ArchSmell
	for _, pkg := range packages {
		files := usage[pkg]
		if ignoredPackage(pkg, ignore) || len(files) < minDependents {
			continue
		}
		sort.Strings(files)
		smells = append(smells, ArchSmell{
			Kind:     KindHubDependency,
			Severity: rule.Severity,
			Files:    files,
			Metrics:  []Metric{NumMetric("count", float64(len(files)))},
			Details:  Details{Package: pkg, Count: len(files)},
		})
	}
	return smells
}

// packageUsage maps each external package to the files importing it.
func packageUsage(ctx *Context) map[string][]string {
	sets := map[string]map[string]bool{}
	for path, symbols := range ctx.FileSymbols {
		for _, imp := range symbols.Imports {
			if !externalPackage(imp.Source) {
				continue
			}
			pkg := packageName(imp.Source)
			if sets[pkg] == nil {
				sets[pkg] = map[string]bool{}
			}
			sets[pkg][path] = true
		}
	}

	usage := make(map[string][]string, len(sets))
	for pkg, files := range sets {
		for f := range files {
			usage[pkg] = append(usage[pkg], f)
		}
	}
	return usage
}
