package config

import (
	_ "embed"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/archlint/archlint/internal/archerr"
)

//go:embed schema.json
var schemaJSON string

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("archlint-config.json", strings.NewReader(schemaJSON)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("archlint-config.json")
}

// validateSchema checks the raw YAML document against the embedded JSON
// schema before typed decoding, so shape errors carry field paths.
func validateSchema(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return archerr.Wrap(archerr.KindConfig, "parse config YAML", err)
	}
	if doc == nil {
		return nil
	}
	doc = normalizeYAML(doc)
	if err := compiledSchema.Validate(doc); err != nil {
		return archerr.Wrap(archerr.KindConfig, "invalid config", err)
	}
	return nil
}

// normalizeYAML rewrites map[any]any (old YAML decodings) and yaml.v3's
// map[string]any trees into the pure JSON shapes the validator expects.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeYAML(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if key, ok := k.(string); ok {
				out[key] = normalizeYAML(item)
			}
		}
		return out
	case []any:
		for i, item := range val {
			val[i] = normalizeYAML(item)
		}
		return val
	default:
		return v
	}
}
