package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/archlint/archlint/internal/detect"
)

// Renderer turns a report into text. Renderers are interchangeable; the
// report guarantees its fields are complete before any renderer runs.
type Renderer interface {
	Render(r *AnalysisReport) (string, error)
}

// NewRenderer picks a renderer by format name.
func NewRenderer(format string, withDiagram bool) (Renderer, error) {
	switch format {
	case "json":
		return &jsonRenderer{}, nil
	case "markdown":
		return &markdownRenderer{withDiagram: withDiagram}, nil
	case "table":
		return &tableRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

type jsonRenderer struct{}

func (j *jsonRenderer) Render(r *AnalysisReport) (string, error) {
	payload := struct {
		ProjectPath   string             `json:"projectPath"`
		FilesAnalyzed int                `json:"filesAnalyzed"`
		Grade         Grade              `json:"grade"`
		Smells        []detect.ArchSmell `json:"smells"`
	}{
		ProjectPath:   r.ProjectPath,
		FilesAnalyzed: r.FilesAnalyzed,
		Grade:         r.Grade(),
		Smells:        r.Smells,
	}
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(raw) + "\n", nil
}

type markdownRenderer struct {
	withDiagram bool
}

func (m *markdownRenderer) Render(r *AnalysisReport) (string, error) {
	grade := r.Grade()
	var b strings.Builder

	fmt.Fprintf(&b, "# Architecture Report\n\n")
	fmt.Fprintf(&b, "Grade: **%s** (score %d, density %.2f over %d files)\n\n",
		grade.Level, grade.Score, grade.Density, r.FilesAnalyzed)

	if len(r.Smells) == 0 {
		b.WriteString("No architectural smells found.\n")
		return b.String(), nil
	}

	if m.withDiagram {
		if diagram := cycleDiagram(r); diagram != "" {
			b.WriteString("```mermaid\n" + diagram + "```\n\n")
		}
	}

	for _, kind := range kindsInOrder(r) {
		fmt.Fprintf(&b, "## %s\n\n", kind)
		for i := range r.Smells {
			smell := &r.Smells[i]
			if smell.Kind != kind {
				continue
			}
			fmt.Fprintf(&b, "- `%s` — %s (%s)\n",
				m.primaryFile(r, smell), headline(smell, func(p string) string { return relativeTo(r.ProjectPath, p) }), smell.Severity)
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

func (m *markdownRenderer) primaryFile(r *AnalysisReport, smell *detect.ArchSmell) string {
	if len(smell.Files) == 0 {
		return "-"
	}
	return relativeTo(r.ProjectPath, smell.Files[0])
}

var (
	tableTitleStyle  = lipgloss.NewStyle().Bold(true)
	severityStyles   = map[string]lipgloss.Style{
		"Low":      lipgloss.NewStyle().Faint(true),
		"Medium":   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"High":     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		"Critical": lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
)

type tableRenderer struct{}

func (t *tableRenderer) Render(r *AnalysisReport) (string, error) {
	styled := isatty.IsTerminal(os.Stdout.Fd())
	grade := r.Grade()
	var b strings.Builder

	title := fmt.Sprintf("Architecture grade %s — %d smells across %d files",
		grade.Level, len(r.Smells), r.FilesAnalyzed)
	if styled {
		title = tableTitleStyle.Render(title)
	}
	b.WriteString(title + "\n\n")

	if len(r.Smells) == 0 {
		b.WriteString("Nothing to report.\n")
		return b.String(), nil
	}

	for _, kind := range kindsInOrder(r) {
		fmt.Fprintf(&b, "%s (%d)\n", kind, r.CountByKind(kind))
		for i := range r.Smells {
			smell := &r.Smells[i]
			if smell.Kind != kind {
				continue
			}
			severity := smell.Severity.String()
			if styled {
				if style, ok := severityStyles[severity]; ok {
					severity = style.Render(severity)
				}
			}
			file := "-"
			if len(smell.Files) > 0 {
				file = relativeTo(r.ProjectPath, smell.Files[0])
			}
			fmt.Fprintf(&b, "  %-8s %-50s %s\n", severity, file,
				headline(smell, func(p string) string { return relativeTo(r.ProjectPath, p) }))
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

// cycleDiagram renders the cycle clusters as a mermaid graph, one arrow per
// cluster membership chain.
func cycleDiagram(r *AnalysisReport) string {
	var b strings.Builder
	for i := range r.Smells {
		smell := &r.Smells[i]
		if smell.Kind != detect.KindCyclicDependencyCluster || len(smell.Files) < 2 {
			continue
		}
		if b.Len() == 0 {
			b.WriteString("graph LR\n")
		}
		for j := range smell.Files {
			from := relativeTo(r.ProjectPath, smell.Files[j])
			to := relativeTo(r.ProjectPath, smell.Files[(j+1)%len(smell.Files)])
			fmt.Fprintf(&b, "  %s --> %s\n", mermaidID(from), mermaidID(to))
		}
	}
	return b.String()
}

func mermaidID(path string) string {
	replacer := strings.NewReplacer("/", "_", ".", "_", "-", "_")
	return replacer.Replace(path)
}

func kindsInOrder(r *AnalysisReport) []detect.Kind {
	seen := map[detect.Kind]bool{}
	var kinds []detect.Kind
	for i := range r.Smells {
		if !seen[r.Smells[i].Kind] {
			seen[r.Smells[i].Kind] = true
			kinds = append(kinds, r.Smells[i].Kind)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
