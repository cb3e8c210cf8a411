package snapshot

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/go-git/go-git/v5"

	"github.com/archlint/archlint/internal/detect"
	"github.com/archlint/archlint/internal/report"
)

// Generator converts an analysis report into a snapshot.
type Generator struct {
	projectRoot   string
	includeCommit bool
	toolVersion   string
	now           func() time.Time
}

// NewGenerator creates a generator for the given project root.
func NewGenerator(projectRoot, toolVersion string) *Generator {
	return &Generator{
		projectRoot: projectRoot,
		toolVersion: toolVersion,
		now:         time.Now,
	}
}

// WithCommit records the current git HEAD in the snapshot.
func (g *Generator) WithCommit(include bool) *Generator {
	g.includeCommit = include
	return g
}

// WithClock overrides the timestamp source, for tests.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds the snapshot: stable IDs, relative sorted paths, neutral
// metric values, smells sorted by (smellType, id).
func (g *Generator) Generate(rep *report.AnalysisReport) *Snapshot {
	smells := make([]Smell, 0, len(rep.Smells))
	for i := range rep.Smells {
		smells = append(smells, g.convert(&rep.Smells[i]))
	}
	sort.Slice(smells, func(i, j int) bool {
		if smells[i].SmellType != smells[j].SmellType {
			return smells[i].SmellType < smells[j].SmellType
		}
		return smells[i].ID < smells[j].ID
	})

	snapshot := &Snapshot{
		SchemaVersion: SchemaVersion,
		ToolVersion:   g.toolVersion,
		GeneratedAt:   g.now().UTC().Format(time.RFC3339),
		Smells:        smells,
		Summary:       g.summary(rep),
		Grade:         rep.Grade().Level,
	}
	if g.includeCommit {
		snapshot.Commit = headCommit(g.projectRoot)
	}
	return snapshot
}

func (g *Generator) convert(smell *detect.ArchSmell) Smell {
	files := make([]string, len(smell.Files))
	for i, f := range smell.Files {
		files[i] = relative(f, g.projectRoot)
	}
	sort.Strings(files)

	metrics := make(map[string]MetricValue, len(smell.Metrics))
	for _, m := range smell.Metrics {
		if m.IsText {
			metrics[m.Name] = Text(m.Text)
		} else {
			metrics[m.Name] = Num(m.Value)
		}
	}

	var locations []Location
	for _, loc := range smell.Locations {
		locations = append(locations, Location{
			File:        relative(loc.File, g.projectRoot),
			Line:        loc.Line,
			Column:      loc.Column,
			Description: loc.Description,
		})
	}

	return Smell{
		ID:        SmellID(smell, g.projectRoot),
		SmellType: string(smell.Kind),
		Severity:  smell.Severity.String(),
		Files:     files,
		Metrics:   metrics,
		Details:   detailsMap(smell),
		Locations: locations,
	}
}

// detailsMap flattens the populated payload fields through JSON so the
// snapshot carries only the meaningful ones.
func detailsMap(smell *detect.ArchSmell) map[string]any {
	raw, err := json.Marshal(smell.Details)
	if err != nil {
		return nil
	}
	var m map[string]any
	if json.Unmarshal(raw, &m) != nil || len(m) == 0 {
		return nil
	}
	return m
}

func (g *Generator) summary(rep *report.AnalysisReport) Summary {
	s := Summary{
		TotalSmells:   len(rep.Smells),
		FilesAnalyzed: rep.FilesAnalyzed,
	}
	for i := range rep.Smells {
		switch rep.Smells[i].Kind {
		case detect.KindCyclicDependencyCluster:
			s.Cycles++
		case detect.KindGodModule:
			s.GodModules++
		case detect.KindDeadCode:
			s.DeadCode++
		case detect.KindDeadSymbol:
			s.DeadSymbols++
		case detect.KindLayerViolation:
			s.LayerViolations++
		case detect.KindHighCyclomatic:
			s.HighCyclomaticComplexity++
		case detect.KindHighCognitive:
			s.HighCognitiveComplexity++
		case detect.KindHubModule:
			s.HubModules++
		}
	}
	if rep.AvgFanIn != nil {
		s.AvgFanIn = rep.AvgFanIn
	}
	if rep.AvgFanOut != nil {
		s.AvgFanOut = rep.AvgFanOut
	}
	return s
}

func headCommit(projectRoot string) string {
	repo, err := git.PlainOpenWithOptions(projectRoot, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	return head.Hash().String()
}
