package detect

import (
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/archlint/archlint/internal/config"
)

func init() {
	Register(Info{
		ID:             "layer_violation",
		Name:           "Layer Violation Detector",
		Description:    "Detects imports that cross configured layer boundaries",
		DefaultEnabled: false,
		Category:       CategoryGraphBased,
	}, func(_ *config.Config) Detector { return &layerViolationDetector{} })
}

// LayerConfig is one entry of the layers rule option.
type LayerConfig struct {
	Name           string   `yaml:"name"`
	Path           string   `yaml:"path"`
	AllowedImports []string `yaml:"allowed_imports"`
}

type layerViolationDetector struct{}

func (d *layerViolationDetector) Info() Info {
	info, _ := InfoFor("layer_violation")
	return info
}

func (d *layerViolationDetector) Detect(ctx *Context) []ArchSmell {
	rule := ctx.Rule("layer_violation")
	if rule == nil {
		return nil
	}

	var layers []LayerConfig
	if !rule.DecodeOption("layers", &layers) || len(layers) == 0 {
		return nil
	}

	var smells []ArchSmell
	for _, node := range ctx.Graph.Nodes() {
		fromPath := ctx.Graph.Path(node)
		fromLayer := findLayer(ctx.Relative(fromPath), layers)
		if fromLayer == nil {
			continue
		}
		fileRule := ctx.RuleForFile("layer_violation", fromPath)
		if fileRule == nil {
			continue
		}

		allowed := map[string]bool{}
		for _, name := range fromLayer.AllowedImports {
			allowed[name] = true
		}

		for _, toNode := range ctx.Graph.Dependencies(node) {
			toPath := ctx.Graph.Path(toNode)
			toLayer := findLayer(ctx.Relative(toPath), layers)
			if toLayer == nil || toLayer.Name == fromLayer.Name || allowed[toLayer.Name] {
				continue
			}

			var line int
			var loc Location
			if edge := ctx.Graph.EdgeBetween(node, toNode); edge != nil {
				line = edge.ImportLine
				loc = Location{File: fromPath, Line: line, Range: edge.ImportRange}
			} else {
				loc = Location{File: fromPath, Line: 0}
			}
			loc.Description = "imports " + ctx.Relative(toPath)

			smells = append(smells, ArchSmell{
				Kind:      KindLayerViolation,
				Severity:  fileRule.Severity,
				Files:     []string{fromPath, toPath},
				Details:   Details{FromLayer: fromLayer.Name, ToLayer: toLayer.Name},
				Locations: []Location{loc},
			})
		}
	}

	sort.Slice(smells, func(i, j int) bool {
		if smells[i].Files[0] != smells[j].Files[0] {
			return smells[i].Files[0] < smells[j].Files[0]
		}
		return smells[i].Files[1] < smells[j].Files[1]
	})
	return smells
}

// findLayer picks the layer whose path pattern matches; the longest pattern
// wins when several match.
func findLayer(relPath string, layers []LayerConfig) *LayerConfig {
	var best *LayerConfig
	for i := range layers {
		layer := &layers[i]
		if ok, err := doublestar.Match(layer.Path, relPath); err != nil || !ok {
			continue
		}
		if best == nil || len(layer.Path) > len(best.Path) {
			best = layer
		}
	}
	return best
}
