package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/detect"
	"github.com/archlint/archlint/internal/diff"
	"github.com/archlint/archlint/internal/report"
	"github.com/archlint/archlint/internal/snapshot"
)

func writeSource(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	canonical, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return canonical
}

func quietOptions() Options {
	opts := DefaultOptions()
	opts.Quiet = true
	opts.EnableGit = false
	opts.EnableCache = false
	return opts
}

func scanProject(t *testing.T, root string, cfg *config.Config) *report.AnalysisReport {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	rep, err := New(root, cfg, quietOptions(), nil).Run()
	require.NoError(t, err)
	return rep
}

func kindsOf(rep *report.AnalysisReport) map[detect.Kind]int {
	kinds := map[detect.Kind]int{}
	for _, smell := range rep.Smells {
		kinds[smell.Kind]++
	}
	return kinds
}

func TestScanDetectsImportCycle(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "a.ts", "import './b';\nexport const a = 1;\n")
	writeSource(t, root, "b.ts", "import './a';\nexport const b = 1;\n")

	rep := scanProject(t, root, nil)
	assert.GreaterOrEqual(t, kindsOf(rep)[detect.KindCyclicDependencyCluster], 1)

	for _, smell := range rep.Smells {
		if smell.Kind == detect.KindCyclicDependencyCluster {
			var names []string
			for _, f := range smell.Files {
				names = append(names, filepath.Base(f))
			}
			assert.ElementsMatch(t, []string{"a.ts", "b.ts"}, names)
		}
	}
}

func TestScanDetectsDeadCode(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "package.json", `{"scripts": {"start": "node entry.ts"}}`)
	writeSource(t, root, "entry.ts", "import { helper } from './used';\nconsole.log(helper());\n")
	writeSource(t, root, "used.ts", "export function helper() { return 1; }\n")
	writeSource(t, root, "dead.ts", "export function nobody() { return 2; }\n")

	rep := scanProject(t, root, nil)

	var deadFiles []string
	for _, smell := range rep.Smells {
		if smell.Kind == detect.KindDeadCode {
			for _, f := range smell.Files {
				deadFiles = append(deadFiles, filepath.Base(f))
			}
		}
	}
	assert.Equal(t, []string{"dead.ts"}, deadFiles)
}

func TestScanDeepNestingScenario(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "deep.ts", `export function deep(x: boolean, j: boolean, k: boolean) {
  if (x) {
    for (let i = 0; i < 10; i++) {
      if (j) {
        while (k) {
          k = false;
        }
      }
    }
  }
}
`)
	cfg := config.Default()
	cfg.Rules["deep_nesting"] = config.RuleConfig{
		Options: map[string]any{"max_depth": 3},
	}

	rep := scanProject(t, root, cfg)
	assert.GreaterOrEqual(t, kindsOf(rep)[detect.KindDeepNesting], 1)
}

func TestScanCodeCloneScenario(t *testing.T) {
	root := t.TempDir()
	block := `export function process%s(input: number[]) {
  let total = 0;
  for (let i = 0; i < input.length; i++) {
    if (input[i] > 0) {
      total += input[i] * 2;
    } else {
      total -= input[i];
    }
  }
  if (total > 100) {
    total = 100;
  }
  return total;
}
`
	for _, name := range []string{"a", "b", "c", "d"} {
		content := strings.ReplaceAll(block, "%s", strings.ToUpper(name))
		writeSource(t, root, name+".ts", content)
	}

	cfg := config.Default()
	cfg.Rules["code_clone"] = config.RuleConfig{
		Options: map[string]any{"min_tokens": 50, "min_lines": 6},
	}

	rep := scanProject(t, root, cfg)

	var cloneSmells []detect.ArchSmell
	for _, smell := range rep.Smells {
		if smell.Kind == detect.KindCodeClone {
			cloneSmells = append(cloneSmells, smell)
		}
	}
	require.NotEmpty(t, cloneSmells)

	found := false
	for _, smell := range cloneSmells {
		if len(smell.Files) == 4 {
			found = true
			assert.GreaterOrEqual(t, smell.Details.TokenCount, 50)
		}
	}
	assert.True(t, found, "one cluster must span all four files")
}

func TestScanLayerViolationScenario(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "domain/user.ts", "import { db } from '../infra/db';\nexport const user = db;\n")
	writeSource(t, root, "infra/db.ts", "export const db = {};\n")

	cfg := config.Default()
	cfg.Rules["layer_violation"] = config.RuleConfig{
		Options: map[string]any{
			"layers": []any{
				map[string]any{"name": "domain", "path": "**/domain/**", "allowed_imports": []any{}},
				map[string]any{"name": "infra", "path": "**/infra/**", "allowed_imports": []any{"domain"}},
			},
		},
	}

	rep := scanProject(t, root, cfg)

	var violations []detect.ArchSmell
	for _, smell := range rep.Smells {
		if smell.Kind == detect.KindLayerViolation {
			violations = append(violations, smell)
		}
	}
	require.Len(t, violations, 1)
	assert.Equal(t, "domain", violations[0].Details.FromLayer)
	assert.Equal(t, "infra", violations[0].Details.ToLayer)
}

func TestScanDeterminism(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "a.ts", "import './b';\nexport const a = 1;\n")
	writeSource(t, root, "b.ts", "import './a';\nexport const b = 1;\n")
	writeSource(t, root, "dead.ts", "export const gone = 1;\n")

	gen := snapshot.NewGenerator(root, "test")
	first := gen.Generate(scanProject(t, root, nil))
	second := gen.Generate(scanProject(t, root, nil))

	require.Equal(t, len(first.Smells), len(second.Smells))
	for i := range first.Smells {
		assert.Equal(t, first.Smells[i].ID, second.Smells[i].ID)
		assert.Equal(t, first.Smells[i].Metrics, second.Smells[i].Metrics)
	}
}

func TestDiffAgainstSelfIsClean(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "a.ts", "import './b';\nexport const a = 1;\n")
	writeSource(t, root, "b.ts", "import './a';\nexport const b = 1;\n")

	gen := snapshot.NewGenerator(root, "test")
	snap := gen.Generate(scanProject(t, root, nil))

	result := diff.NewEngine().Diff(snap, snap)
	assert.False(t, result.HasRegressions)
	assert.Empty(t, result.Improvements)
}

func TestNewCycleIsRegressionAgainstCleanBaseline(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "a.ts", "export const a = 1;\n")

	gen := snapshot.NewGenerator(root, "test")
	baseline := gen.Generate(scanProject(t, root, nil))

	// Introduce a cycle.
	writeSource(t, root, "a.ts", "import './b';\nexport const a = 1;\n")
	writeSource(t, root, "b.ts", "import './a';\nexport const b = 1;\n")
	current := gen.Generate(scanProject(t, root, nil))

	result := diff.NewEngine().Diff(baseline, current)
	require.True(t, result.HasRegressions)

	foundCycle := false
	for _, reg := range result.Regressions {
		if reg.Type == diff.NewSmell && reg.Smell.SmellType == "CyclicDependencyCluster" {
			foundCycle = true
		}
	}
	assert.True(t, foundCycle)
}

func TestCacheHitMatchesColdParse(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "a.ts", "import { b } from './b';\nexport const a = b;\n")
	writeSource(t, root, "b.ts", "export const b = 1;\n")

	opts := quietOptions()
	opts.EnableCache = true

	cfg := config.Default()
	cold, err := New(root, cfg, opts, nil).BuildContext()
	require.NoError(t, err)

	warm, err := New(root, cfg, opts, nil).BuildContext()
	require.NoError(t, err)

	require.Equal(t, len(cold.FileSymbols), len(warm.FileSymbols))
	for path, coldSymbols := range cold.FileSymbols {
		warmSymbols := warm.FileSymbols[path]
		require.NotNil(t, warmSymbols)
		assert.Equal(t, len(coldSymbols.Exports), len(warmSymbols.Exports))
		assert.Equal(t, len(coldSymbols.Imports), len(warmSymbols.Imports))
	}
}

func TestIncrementalRescanVisitsOnlyClosure(t *testing.T) {
	root := t.TempDir()
	a := writeSource(t, root, "a.ts", "export const a = 1;\n")
	writeSource(t, root, "b.ts", "import { a } from './a';\nexport const b = a;\n")
	writeSource(t, root, "solo.ts", "export const solo = 1;\n")

	analyzer := NewAnalyzer(root, config.Default(), quietOptions())
	_, err := analyzer.FullScan()
	require.NoError(t, err)

	writeSource(t, root, "a.ts", "export const a = 2;\n")
	result, err := analyzer.Rescan([]string{a})
	require.NoError(t, err)

	// a and its importer b, but not solo.
	assert.Equal(t, 2, result.AffectedCount)
}

func TestIncrementalFileLocalResultsStableOutsideClosure(t *testing.T) {
	root := t.TempDir()
	long := strings.Repeat("export const filler = 1;\n", 30)
	writeSource(t, root, "big.ts", long)
	a := writeSource(t, root, "a.ts", "export const a = 1;\n")

	cfg := config.Default()
	cfg.Rules["large_file"] = config.RuleConfig{
		Options: map[string]any{"max_lines": 10},
	}

	analyzer := NewAnalyzer(root, cfg, quietOptions())
	initial, err := analyzer.FullScan()
	require.NoError(t, err)

	countLarge := func(smells []detect.ArchSmell) int {
		n := 0
		for _, s := range smells {
			if s.Kind == detect.KindLargeFile {
				n++
			}
		}
		return n
	}
	require.Equal(t, 1, countLarge(initial))

	writeSource(t, root, "a.ts", "export const a = 2;\n")
	result, err := analyzer.Rescan([]string{a})
	require.NoError(t, err)
	assert.Equal(t, 1, countLarge(result.Smells))
}
