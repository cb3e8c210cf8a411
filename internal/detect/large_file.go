package detect

import (
	"os"
	"sort"
	"strings"

	"github.com/go-enry/go-enry/v2"

	"github.com/archlint/archlint/internal/config"
)

func init() {
	Register(Info{
		ID:             "large_file",
		Name:           "Large File Detector",
		Description:    "Detects files exceeding the configured line limit",
		DefaultEnabled: true,
		Category:       CategoryFileLocal,
	}, func(_ *config.Config) Detector { return &largeFileDetector{} })
}

type largeFileDetector struct{}

func (d *largeFileDetector) Info() Info {
	info, _ := InfoFor("large_file")
	return info
}

// autoGenMarkers are checked case-insensitively in the first lines of a file.
var autoGenMarkers = []string{
	"auto-generated",
	"auto generated",
	"this file was auto-generated",
	"this file was automatically generated",
	"generated automatically",
	"do not edit",
	"@generated",
	"# generated",
	"// generated",
	"/* generated",
}

const autoGenHeadLines = 20

func (d *largeFileDetector) Detect(ctx *Context) []ArchSmell {
	var paths []string
	for path := range ctx.FileMetrics {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var smells []ArchSmell
	for _, path := range paths {
		rule := ctx.RuleForFile("large_file", path)
		if rule == nil {
			continue
		}
		threshold := rule.IntOption("max_lines", rule.IntOption("lines", 1000))
		lines := ctx.FileMetrics[path].Lines
		if lines <= threshold {
			continue
		}
		if isAutoGenerated(ctx.Relative(path), path) {
			continue
		}

		smells = append(smells, ArchSmell{
			Kind:     KindLargeFile,
			Severity: rule.Severity,
			Files:    []string{path},
			Metrics: []Metric{
				NumMetric("lines", float64(lines)),
				NumMetric("threshold", float64(threshold)),
			},
			Details:   Details{Lines: lines, Threshold: threshold},
			Locations: []Location{{File: path, Line: 1}},
		})
	}
	return smells
}

// isAutoGenerated combines the marker scan over the file head with enry's
// generated-file heuristics (vendored paths, codegen headers).
func isAutoGenerated(relPath, absPath string) bool {
	content, err := os.ReadFile(absPath)
	if err != nil {
		return false
	}
	if enry.IsGenerated(relPath, content) {
		return true
	}

	lines := strings.SplitN(string(content), "\n", autoGenHeadLines+1)
	if len(lines) > autoGenHeadLines {
		lines = lines[:autoGenHeadLines]
	}
	head := strings.ToLower(strings.Join(lines, "\n"))
	for _, marker := range autoGenMarkers {
		if strings.Contains(head, marker) {
			return true
		}
	}
	return false
}
