package detect

import (
	"sort"

	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/parser"
)

func init() {
	Register(Info{
		ID:             "shared_mutable_state",
		Name:           "Shared Mutable State Detector",
		Description:    "Detects exported mutable bindings (let/var)",
		DefaultEnabled: false,
		Category:       CategoryFileLocal,
	}, func(_ *config.Config) Detector { return &sharedMutableStateDetector{} })
}

type sharedMutableStateDetector struct{}

func (d *sharedMutableStateDetector) Info() Info {
	info, _ := InfoFor("shared_mutable_state")
	return info
}

func (d *sharedMutableStateDetector) Detect(ctx *Context) []ArchSmell {
	var paths []string
	for path := range ctx.FileSymbols {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var smells []ArchSmell
	for _, path := range paths {
		rule := ctx.RuleForFile("shared_mutable_state", path)
		if rule == nil {
			continue
		}
		for _, export := range ctx.FileSymbols[path].Exports {
			if !export.IsMutable || export.Kind != parser.KindVariable {
				continue
			}
			smells = append(smells, ArchSmell{
				Kind:     KindSharedMutableState,
				Severity: rule.Severity,
				Files:    []string{path},
				Details:  Details{Symbol: export.Name},
				Locations: []Location{{
					File: path, Line: export.Line, Range: export.Range,
					Description: "mutable export " + export.Name,
				}},
			})
		}
	}
	return smells
}
