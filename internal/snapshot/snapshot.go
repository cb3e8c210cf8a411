// Package snapshot persists analysis results with stable smell identities so
// two runs can be diffed. Snapshots are pretty-printed JSON with an embedded
// schema version; readers refuse versions newer than they understand. All
// paths inside a snapshot are POSIX-separated and relative to the project
// root.
package snapshot

import (
	"github.com/archlint/archlint/internal/archerr"
)

// SchemaVersion is the current snapshot format version.
const SchemaVersion = 1

// MetricValue is a numeric-or-string measurement.
type MetricValue struct {
	Number *float64 `json:"-"`
	Text   string   `json:"-"`
}

// Num builds a numeric metric value.
func Num(v float64) MetricValue {
	return MetricValue{Number: &v}
}

// Text builds a string metric value.
func Text(s string) MetricValue {
	return MetricValue{Text: s}
}

// AsFloat returns the numeric value, 0 for strings.
func (m MetricValue) AsFloat() float64 {
	if m.Number != nil {
		return *m.Number
	}
	return 0
}

// IsNumber reports whether the value is numeric.
func (m MetricValue) IsNumber() bool { return m.Number != nil }

// Location pins a smell to a source position, with relative paths.
type Location struct {
	File        string `json:"file"`
	Line        int    `json:"line"`
	Column      int    `json:"column,omitempty"`
	Description string `json:"description,omitempty"`
}

// Smell is one entry of a snapshot.
type Smell struct {
	ID        string                 `json:"id"`
	SmellType string                 `json:"smellType"`
	Severity  string                 `json:"severity"`
	Files     []string               `json:"files"`
	Metrics   map[string]MetricValue `json:"metrics"`
	Details   map[string]any         `json:"details,omitempty"`
	Locations []Location             `json:"locations,omitempty"`
}

// Summary aggregates detector counts.
type Summary struct {
	TotalSmells              int      `json:"totalSmells"`
	FilesAnalyzed            int      `json:"filesAnalyzed"`
	Cycles                   int      `json:"cycles"`
	GodModules               int      `json:"godModules"`
	DeadCode                 int      `json:"deadCode"`
	DeadSymbols              int      `json:"deadSymbols"`
	LayerViolations          int      `json:"layerViolations"`
	HighCyclomaticComplexity int      `json:"highCyclomaticComplexity"`
	HighCognitiveComplexity  int      `json:"highCognitiveComplexity"`
	HubModules               int      `json:"hubModules"`
	AvgFanIn                 *float64 `json:"avgFanIn,omitempty"`
	AvgFanOut                *float64 `json:"avgFanOut,omitempty"`
}

// Snapshot is the persisted form of one analysis run.
type Snapshot struct {
	SchemaVersion int     `json:"schemaVersion"`
	ToolVersion   string  `json:"archlintVersion"`
	GeneratedAt   string  `json:"generatedAt"`
	Commit        string  `json:"commit,omitempty"`
	Smells        []Smell `json:"smells"`
	Summary       Summary `json:"summary"`
	Grade         string  `json:"grade"`
}

// Validate rejects unsupported schema versions and duplicate smell IDs.
func (s *Snapshot) Validate() error {
	if s.SchemaVersion > SchemaVersion {
		return archerr.Newf(archerr.KindSnapshot,
			"unsupported schema version %d, max supported %d", s.SchemaVersion, SchemaVersion)
	}
	seen := make(map[string]bool, len(s.Smells))
	for _, smell := range s.Smells {
		if seen[smell.ID] {
			return archerr.Newf(archerr.KindSnapshot, "duplicate smell ID %q", smell.ID)
		}
		seen[smell.ID] = true
	}
	return nil
}
