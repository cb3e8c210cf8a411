package detect

import (
	"sort"

	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/parser"
)

func init() {
	Register(Info{
		ID:             "lcom",
		Name:           "Low Cohesion Detector (LCOM4)",
		Description:    "Detects classes whose methods form disconnected groups",
		DefaultEnabled: false,
		Category:       CategoryFileLocal,
	}, func(_ *config.Config) Detector { return &lcomDetector{} })
}

type lcomDetector struct{}

func (d *lcomDetector) Info() Info {
	info, _ := InfoFor("lcom")
	return info
}

func (d *lcomDetector) Detect(ctx *Context) []ArchSmell {
	var paths []string
	for path := range ctx.FileSymbols {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var smells []ArchSmell
	for _, path := range paths {
		rule := ctx.RuleForFile("lcom", path)
		if rule == nil {
			continue
		}
		minMethods := rule.IntOption("min_methods", 3)
		maxLcom := rule.IntOption("max_lcom", 4)

		for _, class := range ctx.FileSymbols[path].Classes {
			if len(class.Methods) < minMethods {
				continue
			}
			lcom := lcom4(&class)
			if lcom <= maxLcom {
				continue
			}
			smells = append(smells, ArchSmell{
				Kind:     KindLowCohesion,
				Severity: rule.Severity,
				Files:    []string{path},
				Metrics:  []Metric{NumMetric("lcom", float64(lcom))},
				Details:  Details{ClassName: class.Name, Lcom: lcom},
				Locations: []Location{{
					File: path, Line: 1,
					Description: "class " + class.Name,
				}},
			})
		}
	}
	return smells
}

// lcom4 counts connected components in the method relationship graph.
// Methods connect when they share a field or one calls the other;
// constructors and accessors are excluded.
func lcom4(class *parser.ClassSymbol) int {
	var methods []parser.MethodSymbol
	for _, m := range class.Methods {
		if m.IsConstructor || m.IsAccessor {
			continue
		}
		methods = append(methods, m)
	}
	if len(methods) == 0 {
		return 1
	}

	// Union-find over the method indices.
	parent := make([]int, len(methods))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		parent[find(a)] = find(b)
	}

	for i := 0; i < len(methods); i++ {
		for j := i + 1; j < len(methods); j++ {
			if methodsRelated(&methods[i], &methods[j]) {
				union(i, j)
			}
		}
	}

	components := map[int]bool{}
	for i := range methods {
		components[find(i)] = true
	}
	return len(components)
}

func methodsRelated(a, b *parser.MethodSymbol) bool {
	for field := range a.UsedFields {
		if b.UsedFields[field] {
			return true
		}
	}
	return a.UsedMethods[b.Name] || b.UsedMethods[a.Name]
}
