package detect

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/archlint/archlint/internal/config"
)

func init() {
	Register(Info{
		ID:             "barrel_file",
		Name:           "Barrel File Abuse Detector",
		Description:    "Detects index files with excessive re-exports",
		DefaultEnabled: true,
		Category:       CategoryImportBased,
	}, func(_ *config.Config) Detector { return &barrelFileDetector{} })
}

type barrelFileDetector struct{}

func (d *barrelFileDetector) Info() Info {
	info, _ := InfoFor("barrel_file")
	return info
}

func (d *barrelFileDetector) Detect(ctx *Context) []ArchSmell {
	var paths []string
	for path := range ctx.FileSymbols {
		if strings.HasPrefix(filepath.Base(path), "index.") {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	var smells []ArchSmell
	for _, path := range paths {
		rule := ctx.RuleForFile("barrel_file", path)
		if rule == nil {
			continue
		}
		maxReexports := rule.IntOption("max_reexports", 10)

		reexports := 0
		for _, export := range ctx.FileSymbols[path].Exports {
			if export.Source != "" {
				reexports++
			}
		}
		if reexports <= maxReexports {
			continue
		}

		smells = append(smells, ArchSmell{
			Kind:      KindBarrelFileAbuse,
			Severity:  rule.Severity,
			Files:     []string{path},
			Metrics:   []Metric{NumMetric("count", float64(reexports))},
			Details:   Details{Count: reexports},
			Locations: []Location{{File: path, Line: 1}},
		})
	}
	return smells
}
