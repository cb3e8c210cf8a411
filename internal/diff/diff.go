// Package diff classifies the changes between two snapshots into regressions
// and improvements, and drives the --fail-on CI gate.
package diff

import (
	"fmt"
	"sort"

	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/snapshot"
)

// RegressionType tags what got worse.
type RegressionType string

const (
	// NewSmell appeared in current but not baseline.
	NewSmell RegressionType = "newSmell"
	// SeverityIncrease kept the smell but raised its severity.
	SeverityIncrease RegressionType = "severityIncrease"
	// MetricWorsening kept the smell but a tracked metric degraded.
	MetricWorsening RegressionType = "metricWorsening"
)

// ImprovementType tags what got better.
type ImprovementType string

const (
	// Fixed disappeared entirely.
	Fixed ImprovementType = "fixed"
	// SeverityDecrease kept the smell at a lower severity.
	SeverityDecrease ImprovementType = "severityDecrease"
	// MetricImprovement kept the smell but a tracked metric recovered.
	MetricImprovement ImprovementType = "metricImprovement"
)

// Regression is one worsening entry.
type Regression struct {
	ID            string          `json:"id"`
	Type          RegressionType  `json:"type"`
	Smell         *snapshot.Smell `json:"smell"`
	Metric        string          `json:"metric,omitempty"`
	From          float64         `json:"from,omitempty"`
	To            float64         `json:"to,omitempty"`
	FromSeverity  string          `json:"fromSeverity,omitempty"`
	ToSeverity    string          `json:"toSeverity,omitempty"`
	ChangePercent float64         `json:"changePercent,omitempty"`
	Message       string          `json:"message"`
}

// Improvement is one recovery entry.
type Improvement struct {
	ID           string          `json:"id"`
	Type         ImprovementType `json:"type"`
	Metric       string          `json:"metric,omitempty"`
	From         float64         `json:"from,omitempty"`
	To           float64         `json:"to,omitempty"`
	FromSeverity string          `json:"fromSeverity,omitempty"`
	ToSeverity   string          `json:"toSeverity,omitempty"`
	Message      string          `json:"message"`
}

// Summary aggregates the diff.
type Summary struct {
	NewSmells         int `json:"newSmells"`
	FixedSmells       int `json:"fixedSmells"`
	WorsenedSmells    int `json:"worsenedSmells"`
	ImprovedSmells    int `json:"improvedSmells"`
	TotalRegressions  int `json:"totalRegressions"`
	TotalImprovements int `json:"totalImprovements"`
}

// Result is the full diff output.
type Result struct {
	HasRegressions bool          `json:"hasRegressions"`
	Regressions    []Regression  `json:"regressions"`
	Improvements   []Improvement `json:"improvements"`
	Summary        Summary       `json:"summary"`
	BaselineCommit string        `json:"baselineCommit,omitempty"`
	CurrentCommit  string        `json:"currentCommit,omitempty"`
}

// Engine runs diffs with a configurable metric threshold.
type Engine struct {
	thresholdPercent float64
}

// NewEngine creates a diff engine with the default 10% metric threshold.
func NewEngine() *Engine {
	return &Engine{thresholdPercent: 10}
}

// WithThreshold overrides the metric worsening threshold, in percent.
func (e *Engine) WithThreshold(percent float64) *Engine {
	if percent > 0 {
		e.thresholdPercent = percent
	}
	return e
}

// Diff classifies the change from base to curr.
func (e *Engine) Diff(base, curr *snapshot.Snapshot) *Result {
	baseByID := byID(base)
	currByID := byID(curr)

	result := &Result{
		BaselineCommit: base.Commit,
		CurrentCommit:  curr.Commit,
	}

	var currIDs []string
	for id := range currByID {
		currIDs = append(currIDs, id)
	}
	sort.Strings(currIDs)

	for _, id := range currIDs {
		currSmell := currByID[id]
		baseSmell, existed := baseByID[id]
		if !existed {
			result.Regressions = append(result.Regressions, Regression{
				ID: id, Type: NewSmell, Smell: currSmell,
				Message: fmt.Sprintf("new %s: %s", currSmell.SmellType, id),
			})
			result.Summary.NewSmells++
			continue
		}

		baseSev := severityRank(baseSmell.Severity)
		currSev := severityRank(currSmell.Severity)
		switch {
		case currSev > baseSev:
			result.Regressions = append(result.Regressions, Regression{
				ID: id, Type: SeverityIncrease, Smell: currSmell,
				FromSeverity: baseSmell.Severity, ToSeverity: currSmell.Severity,
				Message: fmt.Sprintf("%s severity increased: %s -> %s",
					currSmell.SmellType, baseSmell.Severity, currSmell.Severity),
			})
			result.Summary.WorsenedSmells++
		case currSev < baseSev:
			result.Improvements = append(result.Improvements, Improvement{
				ID: id, Type: SeverityDecrease,
				FromSeverity: baseSmell.Severity, ToSeverity: currSmell.Severity,
				Message: fmt.Sprintf("%s severity decreased: %s -> %s",
					currSmell.SmellType, baseSmell.Severity, currSmell.Severity),
			})
			result.Summary.ImprovedSmells++
		}

		regs, imps := e.compareMetrics(id, baseSmell, currSmell)
		result.Regressions = append(result.Regressions, regs...)
		result.Improvements = append(result.Improvements, imps...)
		result.Summary.WorsenedSmells += len(regs)
		result.Summary.ImprovedSmells += len(imps)
	}

	var baseIDs []string
	for id := range baseByID {
		baseIDs = append(baseIDs, id)
	}
	sort.Strings(baseIDs)
	for _, id := range baseIDs {
		if _, stillThere := currByID[id]; !stillThere {
			result.Improvements = append(result.Improvements, Improvement{
				ID: id, Type: Fixed,
				Message: fmt.Sprintf("fixed %s: %s", baseByID[id].SmellType, id),
			})
			result.Summary.FixedSmells++
		}
	}

	sortRegressions(result.Regressions)
	sortImprovements(result.Improvements)

	result.Summary.TotalRegressions = len(result.Regressions)
	result.Summary.TotalImprovements = len(result.Improvements)
	result.HasRegressions = len(result.Regressions) > 0
	return result
}

// ShouldFail reports whether any regression reaches the gate severity.
func (r *Result) ShouldFail(failOn string) bool {
	if !r.HasRegressions {
		return false
	}
	gate := severityRank(failOn)
	for _, reg := range r.Regressions {
		if reg.Smell != nil && severityRank(reg.Smell.Severity) >= gate {
			return true
		}
	}
	return false
}

func byID(s *snapshot.Snapshot) map[string]*snapshot.Smell {
	m := make(map[string]*snapshot.Smell, len(s.Smells))
	for i := range s.Smells {
		m[s.Smells[i].ID] = &s.Smells[i]
	}
	return m
}

func severityRank(s string) int {
	sev, err := config.ParseSeverity(s)
	if err != nil {
		return 0
	}
	return int(sev)
}

func sortRegressions(regs []Regression) {
	sort.Slice(regs, func(i, j int) bool {
		if regs[i].Type != regs[j].Type {
			return regs[i].Type < regs[j].Type
		}
		return regs[i].ID < regs[j].ID
	})
}

func sortImprovements(imps []Improvement) {
	sort.Slice(imps, func(i, j int) bool {
		if imps[i].Type != imps[j].Type {
			return imps[i].Type < imps[j].Type
		}
		return imps[i].ID < imps[j].ID
	})
}
