package detect

import (
	"sort"

	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/parser"
)

func init() {
	Register(Info{
		ID:             "orphan_types",
		Name:           "Orphan Types Detector",
		Description:    "Detects exported types and interfaces nothing references",
		DefaultEnabled: true,
		Category:       CategoryGlobal,
	}, func(_ *config.Config) Detector { return &orphanTypesDetector{} })
}

type orphanTypesDetector struct{}

func (d *orphanTypesDetector) Info() Info {
	info, _ := InfoFor("orphan_types")
	return info
}

func (d *orphanTypesDetector) Detect(ctx *Context) []ArchSmell {
	if ctx.Rule("orphan_types") == nil {
		return nil
	}

	// Everything referenced anywhere: local usages plus imported names.
	used := map[string]bool{}
	for _, symbols := range ctx.FileSymbols {
		for usage := range symbols.LocalUsages {
			used[usage] = true
		}
		for _, imp := range symbols.Imports {
			used[imp.Name] = true
		}
	}

	var paths []string
	for path := range ctx.FileSymbols {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var smells []ArchSmell
	for _, path := range paths {
		rule := ctx.RuleForFile("orphan_types", path)
		if rule == nil {
			continue
		}
		for _, export := range ctx.FileSymbols[path].Exports {
			if export.Kind != parser.KindType && export.Kind != parser.KindInterface {
				continue
			}
			if used[export.Name] {
				continue
			}
			smells = append(smells, ArchSmell{
				Kind:     KindOrphanType,
				Severity: rule.Severity,
				Files:    []string{path},
				Details:  Details{Name: export.Name},
				Locations: []Location{{
					File: path, Line: export.Line, Range: export.Range,
					Description: string(export.Kind) + " " + export.Name,
				}},
			})
		}
	}
	return smells
}
