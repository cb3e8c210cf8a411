package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/detect"
)

func smellOf(kind detect.Kind, severity config.Severity, file string) detect.ArchSmell {
	return detect.ArchSmell{Kind: kind, Severity: severity, Files: []string{file}}
}

func TestGradeBands(t *testing.T) {
	tests := []struct {
		name     string
		smells   []detect.ArchSmell
		files    int
		expected string
	}{
		{"clean is A", nil, 10, "A"},
		{"low density is A", []detect.ArchSmell{
			smellOf(detect.KindDeadCode, config.SeverityLow, "/p/a.ts"),
		}, 10, "A"},
		{"medium load is B", []detect.ArchSmell{
			smellOf(detect.KindGodModule, config.SeverityHigh, "/p/a.ts"),
			smellOf(detect.KindGodModule, config.SeverityHigh, "/p/b.ts"),
			smellOf(detect.KindDeadCode, config.SeverityMedium, "/p/c.ts"),
		}, 10, "B"},
		{"heavy criticals are F", []detect.ArchSmell{
			smellOf(detect.KindCyclicDependencyCluster, config.SeverityCritical, "/p/a.ts"),
			smellOf(detect.KindCyclicDependencyCluster, config.SeverityCritical, "/p/b.ts"),
		}, 1, "F"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &AnalysisReport{Smells: tt.smells, FilesAnalyzed: tt.files}
			assert.Equal(t, tt.expected, r.Grade().Level)
		})
	}
}

func TestGradeDensityDivisorFloorsAtOne(t *testing.T) {
	r := &AnalysisReport{
		Smells:        []detect.ArchSmell{smellOf(detect.KindDeadCode, config.SeverityMedium, "/p/a.ts")},
		FilesAnalyzed: 0,
	}
	assert.Equal(t, 3.0, r.Grade().Density)
}

func TestScoringOverrides(t *testing.T) {
	r := &AnalysisReport{
		Smells:        []detect.ArchSmell{smellOf(detect.KindDeadCode, config.SeverityMedium, "/p/a.ts")},
		FilesAnalyzed: 1,
		Scoring:       config.ScoringConfig{Medium: 10},
	}
	assert.Equal(t, 10, r.Grade().Score)
}

func TestFilterMinSeverity(t *testing.T) {
	r := &AnalysisReport{Smells: []detect.ArchSmell{
		smellOf(detect.KindDeadCode, config.SeverityLow, "/p/a.ts"),
		smellOf(detect.KindGodModule, config.SeverityHigh, "/p/b.ts"),
	}}
	r.FilterMinSeverity(config.SeverityMedium)
	require.Len(t, r.Smells, 1)
	assert.Equal(t, detect.KindGodModule, r.Smells[0].Kind)
}

func TestRenderersProduceOutput(t *testing.T) {
	r := &AnalysisReport{
		ProjectPath:   "/p",
		FilesAnalyzed: 2,
		Smells: []detect.ArchSmell{
			smellOf(detect.KindDeadCode, config.SeverityMedium, "/p/dead.ts"),
		},
	}

	for _, format := range []string{"json", "markdown", "table"} {
		renderer, err := NewRenderer(format, false)
		require.NoError(t, err)
		out, err := renderer.Render(r)
		require.NoError(t, err)
		assert.Contains(t, out, "dead.ts", "format %s mentions the file", format)
	}

	_, err := NewRenderer("csv", false)
	assert.Error(t, err)
}

func TestMarkdownGroupsByKind(t *testing.T) {
	r := &AnalysisReport{
		ProjectPath:   "/p",
		FilesAnalyzed: 3,
		Smells: []detect.ArchSmell{
			smellOf(detect.KindDeadCode, config.SeverityMedium, "/p/a.ts"),
			smellOf(detect.KindGodModule, config.SeverityHigh, "/p/b.ts"),
		},
	}
	renderer, err := NewRenderer("markdown", false)
	require.NoError(t, err)
	out, err := renderer.Render(r)
	require.NoError(t, err)

	assert.True(t, strings.Contains(out, "## DeadCode"))
	assert.True(t, strings.Contains(out, "## GodModule"))
	assert.True(t, strings.Index(out, "## DeadCode") < strings.Index(out, "## GodModule"))
}
