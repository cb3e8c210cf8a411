package detect

import (
	"sort"

	"github.com/archlint/archlint/internal/config"
)

func init() {
	Register(Info{
		ID:             "dead_symbols",
		Name:           "Dead Symbols Detector",
		Description:    "Detects unused functions, classes, and variables within files",
		DefaultEnabled: true,
		IsDeep:         true,
		Category:       CategoryGlobal,
	}, func(_ *config.Config) Detector { return &deadSymbolsDetector{} })
}

type deadSymbolsDetector struct{}

func (d *deadSymbolsDetector) Info() Info {
	info, _ := InfoFor("dead_symbols")
	return info
}

func (d *deadSymbolsDetector) Detect(ctx *Context) []ArchSmell {
	if ctx.Rule("dead_symbols") == nil {
		return nil
	}

	// Union of every identifier mentioned anywhere in the project.
	allUsages := map[string]bool{}
	for _, symbols := range ctx.FileSymbols {
		for usage := range symbols.LocalUsages {
			allUsages[usage] = true
		}
	}

	// Set of (source file, symbol) pairs imported anywhere, over
	// post-resolution imports.
	type key struct{ source, name string }
	imported := map[key]bool{}
	for _, symbols := range ctx.FileSymbols {
		for _, imp := range symbols.Imports {
			imported[key{imp.Source, imp.Name}] = true
		}
	}

	var paths []string
	for path := range ctx.FileSymbols {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var smells []ArchSmell
	for _, path := range paths {
		rule := ctx.RuleForFile("dead_symbols", path)
		if rule == nil {
			continue
		}
		symbols := ctx.FileSymbols[path]

		var localDefs []string
		for def := range symbols.LocalDefinitions {
			localDefs = append(localDefs, def)
		}
		sort.Strings(localDefs)

		for _, def := range localDefs {
			if allUsages[def] {
				continue
			}
			smells = append(smells, ArchSmell{
				Kind:     KindDeadSymbol,
				Severity: rule.Severity,
				Files:    []string{path},
				Details:  Details{Name: def, SymKind: "local"},
				Locations: []Location{{
					File: path, Line: 1,
					Description: "local definition " + def + " is never used",
				}},
			})
		}

		if ctx.ScriptEntryPoints[path] || ctx.IsFrameworkEntryPoint(path) {
			continue
		}

		for _, export := range symbols.Exports {
			if export.IsReexport || export.Name == "default" || export.Name == "*" {
				continue
			}
			if imported[key{path, export.Name}] || allUsages[export.Name] {
				continue
			}
			smells = append(smells, ArchSmell{
				Kind:     KindDeadSymbol,
				Severity: rule.Severity,
				Files:    []string{path},
				Details:  Details{Name: export.Name, SymKind: string(export.Kind)},
				Locations: []Location{{
					File: path, Line: export.Line, Range: export.Range,
					Description: "exported " + string(export.Kind) + " " + export.Name + " is never imported",
				}},
			})
		}
	}

	return smells
}
