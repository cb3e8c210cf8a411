package engine

import (
	"os"
	"sort"

	"github.com/archlint/archlint/internal/cache"
	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/detect"
	"github.com/archlint/archlint/internal/graph"
	"github.com/archlint/archlint/internal/incremental"
	"github.com/archlint/archlint/internal/parser"
	"github.com/archlint/archlint/internal/resolver"
)

// Analyzer keeps incremental state across scans of one project. After the
// initial full scan, Rescan only reprocesses the affected closure of the
// changed files: file-local detector results outside the closure come from
// the cache, graph and global detectors always re-run.
type Analyzer struct {
	engine *Engine
	state  *incremental.State
}

// RescanResult is what one incremental pass produced.
type RescanResult struct {
	Smells        []detect.ArchSmell
	ChangedCount  int
	AffectedCount int
}

// NewAnalyzer creates an analyzer with empty state.
func NewAnalyzer(root string, cfg *config.Config, opts Options) *Analyzer {
	return &Analyzer{
		engine: New(root, cfg, opts, nil),
		state:  incremental.NewState(root, cfg.Hash()),
	}
}

// State exposes the incremental state, mainly for tests.
func (a *Analyzer) State() *incremental.State { return a.state }

// FullScan populates the state from scratch and returns all smells.
func (a *Analyzer) FullScan() ([]detect.ArchSmell, error) {
	ctx, err := a.engine.BuildContext()
	if err != nil {
		return nil, err
	}

	a.captureState(ctx)

	smells, err := a.runWithFileLocalCaching(ctx, nil)
	if err != nil {
		return nil, err
	}
	return smells, nil
}

// Rescan re-analyzes after the given files changed on disk. A config-hash
// change invalidates the whole state and falls back to a full scan.
func (a *Analyzer) Rescan(changed []string) (*RescanResult, error) {
	currentHash := a.engine.cfg.Hash()
	if currentHash != a.state.ConfigHash || len(a.state.FileSymbols) == 0 {
		a.state.Invalidate(currentHash)
		smells, err := a.FullScan()
		if err != nil {
			return nil, err
		}
		return &RescanResult{
			Smells:        smells,
			ChangedCount:  len(changed),
			AffectedCount: len(a.state.FileSymbols),
		}, nil
	}

	affected := a.state.AffectedClosure(changed)

	p := parser.New()
	pathResolver := resolver.New(a.engine.root, a.engine.cfg.Aliases)

	for path := range affected {
		a.state.DropFileLocal(path)

		content, err := os.ReadFile(path)
		if err != nil {
			// Deleted file.
			a.state.RemoveFile(path)
			continue
		}
		hash := cache.ContentHash(content)
		if a.state.FileHashes[path] == hash {
			continue
		}

		parsedFile, err := p.Parse(content, path)
		if err != nil {
			a.engine.logger.Warn("parse failed during rescan", "path", path, "error", err)
			continue
		}

		symbols := parsedFile.Symbols
		for i := range symbols.Imports {
			if resolved := pathResolver.Resolve(symbols.Imports[i].Source, path); resolved != "" {
				symbols.Imports[i].Source = resolved
			}
		}

		a.state.FileSymbols[path] = &symbols
		a.state.FileMetrics[path] = detect.FileMetrics{Lines: parsedFile.Lines}
		a.state.FunctionComplexity[path] = parsedFile.Functions
		a.state.FileHashes[path] = hash
	}

	a.rebuildGraph()
	a.state.RebuildReverseDeps()

	ctx := a.contextFromState()
	smells, err := a.runWithFileLocalCaching(ctx, affected)
	if err != nil {
		return nil, err
	}

	return &RescanResult{
		Smells:        smells,
		ChangedCount:  len(changed),
		AffectedCount: len(affected),
	}, nil
}

func (a *Analyzer) captureState(ctx *detect.Context) {
	a.state.Graph = ctx.Graph
	a.state.FileSymbols = ctx.FileSymbols
	a.state.FileMetrics = ctx.FileMetrics
	a.state.FunctionComplexity = ctx.FunctionComplexity
	a.state.ChurnMap = ctx.ChurnMap
	a.state.Frameworks = ctx.Frameworks
	a.state.FileTypes = ctx.FileTypes
	a.state.ScriptEntryPoints = ctx.ScriptEntryPoints
	a.state.DynamicLoadPatterns = ctx.DynamicLoadPattern

	a.state.FileHashes = map[string]string{}
	for path := range ctx.FileSymbols {
		if content, err := os.ReadFile(path); err == nil {
			a.state.FileHashes[path] = cache.ContentHash(content)
		}
	}
	a.state.RebuildReverseDeps()
}

func (a *Analyzer) rebuildGraph() {
	g := graph.New()
	for path, symbols := range a.state.FileSymbols {
		from := g.AddFile(path)
		for _, imp := range symbols.Imports {
			if _, known := a.state.FileSymbols[imp.Source]; !known {
				continue
			}
			to := g.AddFile(imp.Source)
			g.AddDependency(from, to, graph.EdgeData{
				ImportLine:      imp.Line,
				ImportRange:     imp.Range,
				ImportedSymbols: []string{imp.Name},
				TypeOnly:        imp.IsTypeOnly,
			})
		}
	}
	a.state.Graph = g
}

func (a *Analyzer) contextFromState() *detect.Context {
	ctx := detect.NewContext(a.engine.root, a.engine.cfg)
	ctx.Graph = a.state.Graph
	ctx.FileSymbols = a.state.FileSymbols
	ctx.FileMetrics = a.state.FileMetrics
	ctx.FunctionComplexity = a.state.FunctionComplexity
	ctx.ChurnMap = a.state.ChurnMap
	ctx.SetFrameworks(a.state.Frameworks)
	ctx.FileTypes = a.state.FileTypes
	ctx.ScriptEntryPoints = a.state.ScriptEntryPoints
	ctx.DynamicLoadPattern = a.state.DynamicLoadPatterns
	return ctx
}

// runWithFileLocalCaching runs the detectors. File-local detectors run
// through the per-file cache: files outside the affected closure reuse their
// cached smells; everything else recomputes and refreshes the cache. A nil
// closure means every file recomputes.
func (a *Analyzer) runWithFileLocalCaching(ctx *detect.Context, affected map[string]bool) ([]detect.ArchSmell, error) {
	active := detect.ActiveDetectors(ctx.Config, ctx.Presets(), detect.RunOptions{
		AllDetectors: a.engine.opts.AllDetectors,
		Include:      a.engine.opts.Include,
		Exclude:      a.engine.opts.Exclude,
	})

	var fileLocal, global []string
	for _, info := range active {
		if info.Category == detect.CategoryFileLocal {
			fileLocal = append(fileLocal, info.ID)
		} else {
			global = append(global, info.ID)
		}
	}

	var smells []detect.ArchSmell
	if len(global) > 0 {
		var err error
		smells, err = detect.Run(ctx, detect.RunOptions{
			AllDetectors: a.engine.opts.AllDetectors,
			Include:      global,
		})
		if err != nil {
			return nil, err
		}
	}

	var paths []string
	for path := range ctx.FileSymbols {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	sort.Strings(fileLocal)
	for _, id := range fileLocal {
		detector, ok := detect.Create(id, ctx.Config)
		if !ok {
			continue
		}

		fresh := detector.Detect(ctx)

		// Partition the fresh smells per file and refresh the cache for
		// files in the closure (or all files on a full run). Ignore
		// directives apply here because these smells bypass detect.Run.
		perFile := map[string][]detect.ArchSmell{}
		for _, smell := range fresh {
			if len(smell.Files) == 0 {
				continue
			}
			loc := smell.PrimaryLocation()
			if parsedFile, ok := ctx.ParsedFiles[loc.File]; ok && parsedFile.IsIgnored(loc.Line, id) {
				continue
			}
			perFile[smell.Files[0]] = append(perFile[smell.Files[0]], smell)
		}

		for _, path := range paths {
			recompute := affected == nil || affected[path]
			if recompute {
				a.state.StoreFileLocal(id, path, perFile[path])
				smells = append(smells, perFile[path]...)
				continue
			}
			if cached, ok := a.state.CachedFileLocal(id, path); ok {
				smells = append(smells, cached...)
			} else {
				a.state.StoreFileLocal(id, path, perFile[path])
				smells = append(smells, perFile[path]...)
			}
		}
	}

	return smells, nil
}
