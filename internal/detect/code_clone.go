package detect

import (
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/detect/clone"
	"github.com/archlint/archlint/internal/parser"
)

func init() {
	Register(Info{
		ID:             "code_clone",
		Name:           "Code Clone Detector",
		Description:    "Detects duplicated code blocks across the project",
		DefaultEnabled: true,
		IsDeep:         true,
		Category:       CategoryGlobal,
	}, func(_ *config.Config) Detector { return &codeCloneDetector{} })
}

type codeCloneDetector struct{}

func (d *codeCloneDetector) Info() Info {
	info, _ := InfoFor("code_clone")
	return info
}

func (d *codeCloneDetector) Detect(ctx *Context) []ArchSmell {
	rule := ctx.Rule("code_clone")
	if rule == nil {
		return nil
	}

	minTokens := rule.IntOption("min_tokens", 50)
	minLines := rule.IntOption("min_lines", 6)
	maxBucketSize := rule.IntOption("max_bucket_size", 1000)
	exactMode := rule.BoolOption("exact", false)

	mode := parser.ModeNormalized
	if exactMode {
		mode = parser.ModeExact
	}

	fileTokens := d.tokenizeFiles(ctx, minTokens, mode)
	if len(fileTokens) == 0 {
		return nil
	}

	clusters := clone.Detect(fileTokens, minTokens, minLines, maxBucketSize)

	var smells []ArchSmell
	for _, cluster := range clusters {
		smells = append(smells, d.smellFor(ctx, rule.Severity, cluster))
	}
	return smells
}

func (d *codeCloneDetector) tokenizeFiles(ctx *Context, minTokens int, mode parser.TokenizationMode) map[string][]parser.NormalizedToken {
	p := parser.New()

	var paths []string
	for path := range ctx.FileMetrics {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	fileTokens := map[string][]parser.NormalizedToken{}
	for _, path := range paths {
		if ctx.RuleForFile("code_clone", path) == nil {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		tokens, err := p.Tokenize(content, path, mode)
		if err != nil {
			continue
		}
		if len(tokens) >= minTokens {
			fileTokens[path] = tokens
		}
	}
	return fileTokens
}

func (d *codeCloneDetector) smellFor(ctx *Context, severity config.Severity, cluster clone.Cluster) ArchSmell {
	hashHex := hex.EncodeToString(cluster.Hash[:])

	fileSet := map[string]bool{}
	locations := make([]Location, 0, len(cluster.Occurrences))
	for _, occ := range cluster.Occurrences {
		fileSet[occ.File] = true
		locations = append(locations, Location{
			File:   occ.File,
			Line:   occ.StartLine,
			Column: occ.StartColumn,
			Range: &parser.CodeRange{
				StartLine:   occ.StartLine,
				StartColumn: occ.StartColumn,
				EndLine:     occ.EndLine,
				EndColumn:   occ.EndColumn,
			},
			Description: fmt.Sprintf(
				"duplicated code (%d tokens, lines %d-%d), also found in: %s",
				cluster.TokenCount, occ.StartLine, occ.EndLine,
				d.otherRefs(ctx, cluster.Occurrences, occ),
			),
		})
	}

	files := make([]string, 0, len(fileSet))
	for f := range fileSet {
		files = append(files, f)
	}
	sort.Strings(files)

	return ArchSmell{
		Kind:      KindCodeClone,
		Severity:  severity,
		Files:     files,
		Metrics:   []Metric{NumMetric("cloneInstances", float64(len(cluster.Occurrences)))},
		Details:   Details{CloneHash: hashHex, TokenCount: cluster.TokenCount},
		Locations: locations,
	}
}

// otherRefs renders the "also found in" list: every other occurrence as
// rel:line or rel:start-end, deduplicated and sorted.
func (d *codeCloneDetector) otherRefs(ctx *Context, occurrences []clone.Occurrence, primary clone.Occurrence) string {
	seen := map[string]bool{}
	var refs []string
	for _, occ := range occurrences {
		if occ.File == primary.File && occ.TokenStart == primary.TokenStart {
			continue
		}
		rel := ctx.Relative(occ.File)
		var ref string
		if occ.StartLine == occ.EndLine {
			ref = fmt.Sprintf("%s:%d", rel, occ.StartLine)
		} else {
			ref = fmt.Sprintf("%s:%d-%d", rel, occ.StartLine, occ.EndLine)
		}
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	sort.Strings(refs)
	return strings.Join(refs, ", ")
}
