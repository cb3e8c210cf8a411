package snapshot

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/detect"
	"github.com/archlint/archlint/internal/report"
)

func fixedClock() time.Time {
	return time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
}

func sampleReport(root string) *report.AnalysisReport {
	return &report.AnalysisReport{
		ProjectPath:   root,
		FilesAnalyzed: 3,
		Smells: []detect.ArchSmell{
			{
				Kind:     detect.KindCyclicDependencyCluster,
				Severity: config.SeverityMedium,
				Files: []string{
					filepath.Join(root, "b.ts"),
					filepath.Join(root, "a.ts"),
				},
				Metrics: []detect.Metric{detect.NumMetric("cycleLength", 2)},
			},
			{
				Kind:     detect.KindGodModule,
				Severity: config.SeverityHigh,
				Files:    []string{filepath.Join(root, "hub.ts")},
				Metrics: []detect.Metric{
					detect.NumMetric("fanIn", 12),
					detect.NumMetric("fanOut", 11),
				},
				Details: detect.Details{FanIn: 12, FanOut: 11},
			},
		},
	}
}

func TestGenerateStableIDs(t *testing.T) {
	root := t.TempDir()
	gen := NewGenerator(root, "1.0.0").WithClock(fixedClock)

	s1 := gen.Generate(sampleReport(root))
	s2 := gen.Generate(sampleReport(root))

	require.Len(t, s1.Smells, 2)
	assert.Equal(t, s1.Smells[0].ID, s2.Smells[0].ID)
	assert.Equal(t, s1.Smells[1].ID, s2.Smells[1].ID)
}

func TestCycleIDOrderIndependent(t *testing.T) {
	a := &detect.ArchSmell{
		Kind:  detect.KindCyclicDependencyCluster,
		Files: []string{"/p/a.ts", "/p/b.ts"},
	}
	b := &detect.ArchSmell{
		Kind:  detect.KindCyclicDependencyCluster,
		Files: []string{"/p/b.ts", "/p/a.ts"},
	}
	assert.Equal(t, SmellID(a, "/p"), SmellID(b, "/p"))
	assert.Contains(t, SmellID(a, "/p"), "cycle:")
	assert.Len(t, SmellID(a, "/p"), len("cycle:")+8)
}

func TestIDFormats(t *testing.T) {
	root := "/p"
	tests := []struct {
		smell    detect.ArchSmell
		expected string
	}{
		{detect.ArchSmell{Kind: detect.KindGodModule, Files: []string{"/p/src/service.ts"}},
			"god:src/service.ts"},
		{detect.ArchSmell{Kind: detect.KindDeadSymbol, Files: []string{"/p/lib.ts"},
			Details: detect.Details{Name: "helper"}},
			"dead:lib.ts:helper"},
		{detect.ArchSmell{Kind: detect.KindHighCyclomatic, Files: []string{"/p/cx.ts"},
			Details: detect.Details{Function: "parse"}},
			"cmplx:cx.ts:parse"},
		{detect.ArchSmell{Kind: detect.KindLayerViolation, Files: []string{"/p/domain/user.ts", "/p/infra/db.ts"},
			Details: detect.Details{FromLayer: "domain", ToLayer: "infra"}},
			"layer:domain/user.ts:infra"},
		{detect.ArchSmell{Kind: detect.KindHubDependency,
			Details: detect.Details{Package: "lodash"}},
			"hub_dep:lodash"},
		{detect.ArchSmell{Kind: detect.KindVendorCoupling,
			Details: detect.Details{Package: "@aws-sdk/client-s3"}},
			"vendor:@aws-sdk/client-s3"},
		{detect.ArchSmell{Kind: detect.KindScatteredConfiguration,
			Details: detect.Details{EnvVar: "API_KEY"}},
			"config:API_KEY"},
		{detect.ArchSmell{Kind: detect.KindTestLeakage,
			Files:   []string{"/p/src/svc.ts", "/p/src/svc.test.ts"},
			Details: detect.Details{TestFile: "/p/src/svc.test.ts"}},
			"test_leak:src/svc.ts:src/svc.test.ts"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, SmellID(&tt.smell, root))
	}
}

func TestGenerateSortsAndRelativizes(t *testing.T) {
	root := t.TempDir()
	s := NewGenerator(root, "1.0.0").WithClock(fixedClock).Generate(sampleReport(root))

	// Sorted by (smellType, id).
	assert.Equal(t, "CyclicDependencyCluster", s.Smells[0].SmellType)
	assert.Equal(t, "GodModule", s.Smells[1].SmellType)

	// Relative sorted paths.
	assert.Equal(t, []string{"a.ts", "b.ts"}, s.Smells[0].Files)
	assert.Equal(t, []string{"hub.ts"}, s.Smells[1].Files)

	assert.Equal(t, 1, s.Summary.Cycles)
	assert.Equal(t, 1, s.Summary.GodModules)
	assert.Equal(t, 2, s.Summary.TotalSmells)
	assert.Equal(t, 3, s.Summary.FilesAnalyzed)
}

func TestSnapshotRoundTripByteEqual(t *testing.T) {
	root := t.TempDir()
	s := NewGenerator(root, "1.0.0").WithClock(fixedClock).Generate(sampleReport(root))

	path := filepath.Join(root, "snapshot.json")
	require.NoError(t, Write(s, path))

	loaded, err := Read(path)
	require.NoError(t, err)

	first, err := json.Marshal(s)
	require.NoError(t, err)
	second, err := json.Marshal(loaded)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestValidateRejectsFutureSchema(t *testing.T) {
	s := &Snapshot{SchemaVersion: SchemaVersion + 1}
	assert.Error(t, s.Validate())
}

func TestValidateRejectsDuplicateIDs(t *testing.T) {
	s := &Snapshot{
		SchemaVersion: SchemaVersion,
		Smells: []Smell{
			{ID: "dup", SmellType: "GodModule"},
			{ID: "dup", SmellType: "GodModule"},
		},
	}
	assert.Error(t, s.Validate())
}

func TestMetricValueJSON(t *testing.T) {
	raw, err := json.Marshal(map[string]MetricValue{
		"fanIn": Num(12),
		"label": Text("hot"),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"fanIn": 12, "label": "hot"}`, string(raw))

	var decoded map[string]MetricValue
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, decoded["fanIn"].IsNumber())
	assert.Equal(t, 12.0, decoded["fanIn"].AsFloat())
	assert.Equal(t, "hot", decoded["label"].Text)
}
