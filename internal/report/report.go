// Package report assembles the scan result: the smell list, summary
// counters, and the A–F architecture grade, plus the text renderers the CLI
// prints with.
package report

import (
	"fmt"

	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/detect"
)

// AnalysisReport is the complete result of one scan.
type AnalysisReport struct {
	ProjectPath   string
	Smells        []detect.ArchSmell
	FilesAnalyzed int
	Scoring       config.ScoringConfig
	AvgFanIn      *float64
	AvgFanOut     *float64
}

// Grade is the scored architecture verdict.
type Grade struct {
	Level   string  `json:"level"`
	Score   int     `json:"score"`
	Density float64 `json:"density"`
}

// gradeBands cut the density scale into levels. A table, not a formula.
var gradeBands = []struct {
	maxDensity float64
	level      string
}{
	{1.0, "A"},
	{3.0, "B"},
	{7.0, "C"},
	{15.0, "D"},
}

// Grade computes the severity-weighted density grade.
func (r *AnalysisReport) Grade() Grade {
	total := 0
	for i := range r.Smells {
		total += r.Smells[i].Score(r.Scoring)
	}

	files := r.FilesAnalyzed
	if files < 1 {
		files = 1
	}
	density := float64(total) / float64(files)

	level := "F"
	for _, band := range gradeBands {
		if density <= band.maxDensity {
			level = band.level
			break
		}
	}
	return Grade{Level: level, Score: total, Density: density}
}

// CountByKind returns how many smells of one kind were found.
func (r *AnalysisReport) CountByKind(kind detect.Kind) int {
	count := 0
	for i := range r.Smells {
		if r.Smells[i].Kind == kind {
			count++
		}
	}
	return count
}

// FilterMinSeverity drops smells below the given severity.
func (r *AnalysisReport) FilterMinSeverity(min config.Severity) {
	kept := r.Smells[:0]
	for _, smell := range r.Smells {
		if smell.Severity >= min {
			kept = append(kept, smell)
		}
	}
	r.Smells = kept
}

// FilterMinScore drops smells scoring under the given weight.
func (r *AnalysisReport) FilterMinScore(min int) {
	kept := r.Smells[:0]
	for _, smell := range r.Smells {
		if smell.Score(r.Scoring) >= min {
			kept = append(kept, smell)
		}
	}
	r.Smells = kept
}

// headline is the one-line description used by the renderers.
func headline(smell *detect.ArchSmell, relativize func(string) string) string {
	d := &smell.Details
	switch smell.Kind {
	case detect.KindCyclicDependencyCluster, detect.KindCircularTypeDependency:
		return fmt.Sprintf("cycle of %d files", len(smell.Files))
	case detect.KindPackageCycle:
		return fmt.Sprintf("package cycle of %d packages", len(d.Packages))
	case detect.KindGodModule:
		return fmt.Sprintf("fan-in %d, fan-out %d, churn %d", d.FanIn, d.FanOut, d.Churn)
	case detect.KindDeadCode:
		return "file is never imported"
	case detect.KindDeadSymbol:
		return fmt.Sprintf("%s is never used", d.Name)
	case detect.KindLargeFile:
		return fmt.Sprintf("%d lines (limit %d)", d.Lines, d.Threshold)
	case detect.KindHighCyclomatic, detect.KindHighCognitive:
		return fmt.Sprintf("%s: complexity %d", d.Function, d.Complexity)
	case detect.KindDeepNesting:
		return fmt.Sprintf("%s: depth %d", d.Function, d.Depth)
	case detect.KindLongParameterList:
		return fmt.Sprintf("%s: %d parameters", d.Function, d.Count)
	case detect.KindPrimitiveObsession:
		return fmt.Sprintf("%s: %d primitive parameters", d.Function, d.Primitives)
	case detect.KindLowCohesion:
		return fmt.Sprintf("class %s: LCOM4 %d", d.ClassName, d.Lcom)
	case detect.KindCodeClone:
		return fmt.Sprintf("%d copies of a %d-token block", len(smell.Locations), d.TokenCount)
	case detect.KindLayerViolation:
		return fmt.Sprintf("%s -> %s", d.FromLayer, d.ToLayer)
	case detect.KindSdpViolation:
		return fmt.Sprintf("I %.2f depends on I %.2f", d.FromI, d.ToI)
	case detect.KindHighCoupling:
		return fmt.Sprintf("CBO %d", d.Cbo)
	case detect.KindHubModule:
		return fmt.Sprintf("fan-in %d, fan-out %d, little logic", d.FanIn, d.FanOut)
	case detect.KindHubDependency, detect.KindVendorCoupling:
		return fmt.Sprintf("%s used by %d files", d.Package, d.Count)
	case detect.KindBarrelFileAbuse:
		return fmt.Sprintf("%d re-exports", d.Count)
	case detect.KindFeatureEnvy:
		return fmt.Sprintf("envies %s (%.1fx)", relativize(d.EnviedModule), d.Ratio)
	case detect.KindShotgunSurgery:
		return fmt.Sprintf("co-changes with %.1f files on average", d.AvgCoChanges)
	case detect.KindScatteredConfiguration:
		return fmt.Sprintf("%s read in %d files", d.EnvVar, d.Count)
	case detect.KindScatteredModule:
		return fmt.Sprintf("%d unrelated export groups", d.Components)
	case detect.KindSharedMutableState:
		return fmt.Sprintf("mutable export %s", d.Symbol)
	case detect.KindSideEffectImport:
		return fmt.Sprintf("side-effect import of %s", d.Name)
	case detect.KindTestLeakage:
		return fmt.Sprintf("imports test file %s", relativize(d.TestFile))
	case detect.KindOrphanType:
		return fmt.Sprintf("type %s is never referenced", d.Name)
	case detect.KindUnstableInterface:
		return fmt.Sprintf("churn %d with %d dependants", d.Churn, d.FanIn)
	default:
		return string(smell.Kind)
	}
}
