package detect

import (
	"sort"
	"strings"

	"github.com/archlint/archlint/internal/config"
)

func init() {
	Register(Info{
		ID:             "side_effect_import",
		Name:           "Side-Effect Import Detector",
		Description:    "Detects imports that run code on load without binding symbols",
		DefaultEnabled: true,
		Category:       CategoryImportBased,
	}, func(_ *config.Config) Detector { return &sideEffectImportDetector{} })
}

type sideEffectImportDetector struct{}

func (d *sideEffectImportDetector) Info() Info {
	info, _ := InfoFor("side_effect_import")
	return info
}

// knownSideEffectSource reports imports whose whole point is the side effect;
// flagging them would be noise.
func knownSideEffectSource(source string) bool {
	for _, ext := range []string{".css", ".scss", ".sass", ".less"} {
		if strings.HasSuffix(source, ext) {
			return true
		}
	}
	if source == "reflect-metadata" {
		return true
	}
	for _, marker := range []string{"polyfill", "setup", "instrument", "register"} {
		if strings.Contains(source, marker) {
			return true
		}
	}
	return false
}

func (d *sideEffectImportDetector) Detect(ctx *Context) []ArchSmell {
	var paths []string
	for path := range ctx.FileSymbols {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var smells []ArchSmell
	for _, path := range paths {
		rule := ctx.RuleForFile("side_effect_import", path)
		if rule == nil {
			continue
		}
		for _, imp := range ctx.FileSymbols[path].Imports {
			if imp.Name != "*" || imp.Alias != "" || imp.IsReexport || imp.IsDynamic {
				continue
			}
			if knownSideEffectSource(imp.Source) {
				continue
			}
			smells = append(smells, ArchSmell{
				Kind:     KindSideEffectImport,
				Severity: rule.Severity,
				Files:    []string{path},
				Details:  Details{Name: imp.Source},
				Locations: []Location{{
					File: path, Line: imp.Line, Range: imp.Range,
					Description: "side-effect import of '" + imp.Source + "'",
				}},
			})
		}
	}
	return smells
}
