// Package engine orchestrates the analysis pipeline: scan, parse with
// caching, resolve, graph, detect, report. The stages before the detector
// run are data-parallel over files; the detector stage is parallel over
// detectors.
package engine

import (
	"os"
	"runtime"
	"sort"
	"sync"

	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/archlint/archlint/internal/cache"
	"github.com/archlint/archlint/internal/churn"
	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/detect"
	"github.com/archlint/archlint/internal/framework"
	"github.com/archlint/archlint/internal/graph"
	"github.com/archlint/archlint/internal/packagejson"
	"github.com/archlint/archlint/internal/parser"
	"github.com/archlint/archlint/internal/progress"
	"github.com/archlint/archlint/internal/report"
	"github.com/archlint/archlint/internal/resolver"
	"github.com/archlint/archlint/internal/scanner"
	"github.com/archlint/archlint/internal/version"
)

// Options shape one engine run.
type Options struct {
	Extensions   []string
	EnableCache  bool
	EnableGit    bool
	AllDetectors bool
	Include      []string
	Exclude      []string
	Quiet        bool
}

// DefaultOptions enables cache and git with the TypeScript extension set.
func DefaultOptions() Options {
	return Options{
		Extensions:  []string{"ts", "tsx", "js", "jsx", "mjs", "cjs"},
		EnableCache: true,
		EnableGit:   true,
	}
}

// Engine runs full scans of one project.
type Engine struct {
	root     string
	cfg      *config.Config
	opts     Options
	logger   *slog.Logger
	progress *progress.Reporter
}

// New creates an engine for root with the given config.
func New(root string, cfg *config.Config, opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultOptions().Extensions
	}
	return &Engine{
		root:     root,
		cfg:      cfg,
		opts:     opts,
		logger:   logger,
		progress: progress.New(opts.Quiet),
	}
}

// Run executes the full pipeline and returns the report.
func (e *Engine) Run() (*report.AnalysisReport, error) {
	ctx, err := e.BuildContext()
	if err != nil {
		return nil, err
	}

	e.progress.Println("running detectors...")
	smells, err := detect.Run(ctx, detect.RunOptions{
		AllDetectors: e.opts.AllDetectors,
		Include:      e.opts.Include,
		Exclude:      e.opts.Exclude,
	})
	if err != nil {
		return nil, err
	}

	return e.assembleReport(ctx, smells), nil
}

// BuildContext runs the pipeline stages up to (not including) detection.
func (e *Engine) BuildContext() (*detect.Context, error) {
	files, err := e.scanFiles()
	if err != nil {
		return nil, err
	}
	e.logger.Debug("scanned project", "files", len(files))

	gitProvider := churn.NewProvider(e.root)
	gitEnabled := e.opts.EnableGit && e.cfg.Git.Enabled && gitProvider.Available()

	head := ""
	if gitEnabled {
		head = gitProvider.Head()
	}

	var analysisCache *cache.Cache
	if e.opts.EnableCache {
		analysisCache, err = cache.Load(e.root, version.Version, e.cfg.Hash(), head)
		if err != nil {
			return nil, err
		}
	}

	parsed, metrics, err := e.parseFiles(files, analysisCache)
	if err != nil {
		return nil, err
	}

	ctx := detect.NewContext(e.root, e.cfg)
	ctx.ParsedFiles = parsed
	ctx.FileMetrics = metrics

	e.populateProjectMetadata(ctx, files)
	e.resolveAndBuildGraph(ctx, files)

	if gitEnabled {
		e.loadChurn(ctx, gitProvider, analysisCache, files)
	}

	if analysisCache != nil {
		if err := analysisCache.Save(); err != nil {
			e.logger.Warn("failed to save analysis cache", "error", err)
		}
	}

	return ctx, nil
}

func (e *Engine) scanFiles() ([]string, error) {
	s := scanner.New(e.root, e.opts.Extensions, e.cfg.Ignore, e.logger)
	files, err := s.Scan()
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// parseFiles parses every file on a worker pool, consulting the cache by
// content hash. Parse failures skip the file; one bad file cannot sink the
// scan.
func (e *Engine) parseFiles(files []string, analysisCache *cache.Cache) (map[string]*parser.ParsedFile, map[string]detect.FileMetrics, error) {
	e.progress.StartStage("parsing", len(files))
	defer e.progress.FinishStage()

	parsed := make(map[string]*parser.ParsedFile, len(files))
	metrics := make(map[string]detect.FileMetrics, len(files))
	var mu sync.Mutex

	p := parser.New()
	var g errgroup.Group
	g.SetLimit(max(runtime.NumCPU()-1, 1))

	for _, file := range files {
		g.Go(func() error {
			defer e.progress.Step()

			content, err := os.ReadFile(file)
			if err != nil {
				e.logger.Debug("skipping unreadable file", "path", file, "error", err)
				return nil
			}
			if e.cfg.MaxFileSize > 0 && int64(len(content)) > e.cfg.MaxFileSize {
				e.logger.Debug("skipping oversized file", "path", file, "bytes", len(content))
				return nil
			}

			hash := cache.ContentHash(content)

			mu.Lock()
			var cached *parser.ParsedFile
			if analysisCache != nil {
				cached = analysisCache.Get(file, hash)
			}
			mu.Unlock()

			result := cached
			if result == nil {
				result, err = p.Parse(content, file)
				if err != nil {
					e.logger.Warn("parse failed, skipping file", "path", file, "error", err)
					return nil
				}
			}

			mu.Lock()
			parsed[file] = result
			metrics[file] = detect.FileMetrics{Lines: result.Lines}
			if cached == nil && analysisCache != nil {
				analysisCache.Insert(file, hash, result)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return parsed, metrics, nil
}

// populateProjectMetadata fills frameworks, file types, entry points, and
// dynamic load patterns.
func (e *Engine) populateProjectMetadata(ctx *detect.Context, files []string) {
	frameworks := framework.Detect(e.root)
	ctx.SetFrameworks(frameworks)
	if len(frameworks) > 0 {
		e.logger.Debug("detected frameworks", "frameworks", frameworks)
	}

	presets := ctx.Presets()
	for _, file := range files {
		if fileType := framework.ClassifyFile(ctx.Relative(file), presets); fileType != framework.FileTypeUnknown {
			ctx.FileTypes[file] = fileType
		}
	}

	pkgConfig := packagejson.Parse(e.root)
	ctx.ScriptEntryPoints = pkgConfig.EntryPoints
	ctx.DynamicLoadPattern = pkgConfig.DynamicLoadPatterns

	// Preset entry points are project-relative names.
	for _, preset := range presets {
		for _, ep := range preset.EntryPoints {
			for _, file := range files {
				if ctx.Relative(file) == ep {
					ctx.ScriptEntryPoints[file] = true
				}
			}
		}
	}
}

// resolveAndBuildGraph rewrites resolvable import sources to absolute paths
// (in parallel over files) and builds the dependency graph from the result.
func (e *Engine) resolveAndBuildGraph(ctx *detect.Context, files []string) {
	e.progress.StartStage("resolving", len(files))
	defer e.progress.FinishStage()

	pathResolver := resolver.New(e.root, e.cfg.Aliases)
	known := make(map[string]bool, len(files))
	for _, f := range files {
		known[f] = true
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(max(runtime.NumCPU()-1, 1))

	for _, file := range files {
		g.Go(func() error {
			defer e.progress.Step()
			parsedFile := ctx.ParsedFiles[file]
			if parsedFile == nil {
				return nil
			}
			symbols := parsedFile.Symbols

			for i := range symbols.Imports {
				imp := &symbols.Imports[i]
				if resolved := pathResolver.Resolve(imp.Source, file); resolved != "" {
					imp.Source = resolved
				}
			}
			for i := range symbols.Exports {
				exp := &symbols.Exports[i]
				if exp.Source == "" {
					continue
				}
				if resolved := pathResolver.Resolve(exp.Source, file); resolved != "" {
					exp.Source = resolved
				}
			}

			mu.Lock()
			ctx.FileSymbols[file] = &symbols
			ctx.FunctionComplexity[file] = parsedFile.Functions
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, file := range files {
		symbols := ctx.FileSymbols[file]
		if symbols == nil {
			continue
		}
		from := ctx.Graph.AddFile(file)
		for _, imp := range symbols.Imports {
			if !known[imp.Source] {
				continue
			}
			to := ctx.Graph.AddFile(imp.Source)
			ctx.Graph.AddDependency(from, to, graph.EdgeData{
				ImportLine:      imp.Line,
				ImportRange:     imp.Range,
				ImportedSymbols: []string{imp.Name},
				TypeOnly:        imp.IsTypeOnly,
			})
		}
	}

	e.logger.Debug("built dependency graph",
		"nodes", ctx.Graph.NodeCount(), "edges", ctx.Graph.EdgeCount())
}

func (e *Engine) loadChurn(ctx *detect.Context, provider *churn.Provider, analysisCache *cache.Cache, files []string) {
	if analysisCache != nil {
		if cached := analysisCache.ChurnMap(); cached != nil {
			ctx.ChurnMap = cached
			return
		}
	}

	e.progress.Println("collecting git churn...")
	churnMap, err := provider.Churn(files, e.cfg.Git.HistoryPeriod)
	if err != nil {
		e.logger.Warn("churn collection failed; continuing without churn", "error", err)
		return
	}
	ctx.ChurnMap = churnMap
	if analysisCache != nil {
		analysisCache.SetChurnMap(churnMap)
	}
}

func (e *Engine) assembleReport(ctx *detect.Context, smells []detect.ArchSmell) *report.AnalysisReport {
	rep := &report.AnalysisReport{
		ProjectPath:   e.root,
		Smells:        smells,
		FilesAnalyzed: len(ctx.FileSymbols),
		Scoring:       e.cfg.Scoring,
	}

	if nodes := ctx.Graph.Nodes(); len(nodes) > 0 {
		totalIn, totalOut := 0, 0
		for _, n := range nodes {
			totalIn += ctx.Graph.FanIn(n)
			totalOut += ctx.Graph.FanOut(n)
		}
		avgIn := float64(totalIn) / float64(len(nodes))
		avgOut := float64(totalOut) / float64(len(nodes))
		rep.AvgFanIn = &avgIn
		rep.AvgFanOut = &avgOut
	}

	return rep
}
