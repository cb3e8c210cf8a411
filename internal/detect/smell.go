// Package detect holds the detector framework: the smell model, the shared
// analysis context, the registry of detectors, and the parallel runner.
// Individual detectors live in this package too, one file each, and register
// themselves from init functions.
package detect

import (
	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/parser"
)

// Kind tags a smell variant.
type Kind string

const (
	KindCyclicDependencyCluster Kind = "CyclicDependencyCluster"
	KindCircularTypeDependency  Kind = "CircularTypeDependency"
	KindPackageCycle            Kind = "PackageCycle"
	KindGodModule               Kind = "GodModule"
	KindDeadCode                Kind = "DeadCode"
	KindDeadSymbol              Kind = "DeadSymbol"
	KindLargeFile               Kind = "LargeFile"
	KindHighCyclomatic          Kind = "HighCyclomaticComplexity"
	KindHighCognitive           Kind = "HighCognitiveComplexity"
	KindDeepNesting             Kind = "DeepNesting"
	KindLongParameterList       Kind = "LongParameterList"
	KindPrimitiveObsession      Kind = "PrimitiveObsession"
	KindLowCohesion             Kind = "LowCohesion"
	KindCodeClone               Kind = "CodeClone"
	KindLayerViolation          Kind = "LayerViolation"
	KindSdpViolation            Kind = "SdpViolation"
	KindHighCoupling            Kind = "HighCoupling"
	KindHubModule               Kind = "HubModule"
	KindHubDependency           Kind = "HubDependency"
	KindVendorCoupling          Kind = "VendorCoupling"
	KindBarrelFileAbuse         Kind = "BarrelFileAbuse"
	KindFeatureEnvy             Kind = "FeatureEnvy"
	KindShotgunSurgery          Kind = "ShotgunSurgery"
	KindScatteredConfiguration  Kind = "ScatteredConfiguration"
	KindScatteredModule         Kind = "ScatteredModule"
	KindSharedMutableState      Kind = "SharedMutableState"
	KindSideEffectImport        Kind = "SideEffectImport"
	KindTestLeakage             Kind = "TestLeakage"
	KindOrphanType              Kind = "OrphanType"
	KindUnstableInterface       Kind = "UnstableInterface"
)

// Metric is one typed measurement attached to a smell. Either Value or Text
// is meaningful depending on IsText.
type Metric struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value,omitempty"`
	Text   string  `json:"text,omitempty"`
	IsText bool    `json:"isText,omitempty"`
}

// NumMetric builds a numeric metric.
func NumMetric(name string, value float64) Metric {
	return Metric{Name: name, Value: value}
}

// TextMetric builds a string metric.
func TextMetric(name, text string) Metric {
	return Metric{Name: name, Text: text, IsText: true}
}

// Location pins a smell to a place in the source.
type Location struct {
	File        string            `json:"file"`
	Line        int               `json:"line"`
	Column      int               `json:"column,omitempty"`
	Range       *parser.CodeRange `json:"range,omitempty"`
	Description string            `json:"description,omitempty"`
}

// Details carries the variant payload. Only the fields relevant to the Kind
// are set; everything else stays at its zero value and is omitted from JSON.
type Details struct {
	// Symbol- and function-scoped payloads
	Name     string `json:"name,omitempty"`
	Function string `json:"function,omitempty"`
	Symbol   string `json:"symbol,omitempty"`
	SymKind  string `json:"symbolKind,omitempty"`

	// Graph payloads
	FanIn  int `json:"fanIn,omitempty"`
	FanOut int `json:"fanOut,omitempty"`
	Churn  int `json:"churn,omitempty"`
	Cbo    int `json:"cbo,omitempty"`
	Score  int `json:"score,omitempty"`

	// Metric payloads
	Complexity int     `json:"complexity,omitempty"`
	Threshold  int     `json:"threshold,omitempty"`
	Depth      int     `json:"depth,omitempty"`
	Count      int     `json:"count,omitempty"`
	Primitives int     `json:"primitives,omitempty"`
	Lcom       int     `json:"lcom,omitempty"`
	Lines      int     `json:"lines,omitempty"`
	Components int     `json:"components,omitempty"`
	Ratio      float64 `json:"ratio,omitempty"`
	ClassName  string  `json:"className,omitempty"`

	// Dependency payloads
	Package      string   `json:"package,omitempty"`
	Packages     []string `json:"packages,omitempty"`
	FromLayer    string   `json:"fromLayer,omitempty"`
	ToLayer      string   `json:"toLayer,omitempty"`
	TestFile     string   `json:"testFile,omitempty"`
	EnviedModule string   `json:"enviedModule,omitempty"`
	EnvVar       string   `json:"envVar,omitempty"`
	FromI        float64  `json:"fromInstability,omitempty"`
	ToI          float64  `json:"toInstability,omitempty"`

	// Clone payloads
	CloneHash  string `json:"cloneHash,omitempty"`
	TokenCount int    `json:"tokenCount,omitempty"`

	// Churn payloads
	AvgCoChanges float64 `json:"avgCoChanges,omitempty"`
}

// Hotspot is a top-degree member of a cycle cluster.
type Hotspot struct {
	File   string `json:"file"`
	FanIn  int    `json:"fanIn"`
	FanOut int    `json:"fanOut"`
}

// CriticalEdge is an edge whose removal would split a cycle cluster.
type CriticalEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Score int    `json:"score"`
}

// CycleCluster enriches a cycle smell with its structure.
type CycleCluster struct {
	Hotspots      []Hotspot      `json:"hotspots,omitempty"`
	CriticalEdges []CriticalEdge `json:"criticalEdges,omitempty"`
}

// ArchSmell is one detected architectural problem. The payload is immutable
// after creation; only Severity is adjusted by rule resolution.
type ArchSmell struct {
	Kind      Kind            `json:"kind"`
	Severity  config.Severity `json:"severity"`
	Files     []string        `json:"files"`
	Metrics   []Metric        `json:"metrics,omitempty"`
	Locations []Location      `json:"locations,omitempty"`
	Details   Details         `json:"details,omitempty"`
	Cluster   *CycleCluster   `json:"cluster,omitempty"`
}

// Metric returns the named numeric metric value, if present.
func (s *ArchSmell) Metric(name string) (float64, bool) {
	for _, m := range s.Metrics {
		if m.Name == name && !m.IsText {
			return m.Value, true
		}
	}
	return 0, false
}

// Score is the smell's contribution to the project score under cfg weights.
func (s *ArchSmell) Score(scoring config.ScoringConfig) int {
	return scoring.Weight(s.Severity)
}

// PrimaryLocation returns the first location, or a zero Location with just
// the first file when none were recorded.
func (s *ArchSmell) PrimaryLocation() Location {
	if len(s.Locations) > 0 {
		return s.Locations[0]
	}
	if len(s.Files) > 0 {
		return Location{File: s.Files[0]}
	}
	return Location{}
}
