package detect

import (
	"sort"

	"github.com/archlint/archlint/internal/config"
)

func init() {
	Register(Info{
		ID:             "scattered_config",
		Name:           "Scattered Configuration Detector",
		Description:    "Detects environment variables read from many modules",
		DefaultEnabled: false,
		Category:       CategoryGlobal,
	}, func(_ *config.Config) Detector { return &scatteredConfigDetector{} })
}

type scatteredConfigDetector struct{}

func (d *scatteredConfigDetector) Info() Info {
	info, _ := InfoFor("scattered_config")
	return info
}

func (d *scatteredConfigDetector) Detect(ctx *Context) []ArchSmell {
	rule := ctx.Rule("scattered_config")
	if rule == nil {
		return nil
	}
	maxFiles := rule.IntOption("max_files", 3)

	usage := map[string][]string{}
	for path, symbols := range ctx.FileSymbols {
		for envVar := range symbols.EnvVars {
			usage[envVar] = append(usage[envVar], path)
		}
	}

	var vars []string
	for envVar := range usage {
		vars = append(vars, envVar)
	}
	sort.Strings(vars)

	var smells []ArchSmell
	for _, envVar := range vars {
		files := usage[envVar]
		if len(files) <= maxFiles {
			continue
		}
		sort.Strings(files)
		smells = append(smells, ArchSmell{
			Kind:     KindScatteredConfiguration,
			Severity: rule.Severity,
			Files:    files,
			Metrics:  []Metric{NumMetric("count", float64(len(files)))},
			Details:  Details{EnvVar: envVar, Count: len(files)},
		})
	}
	return smells
}
