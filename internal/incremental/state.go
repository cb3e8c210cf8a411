// Package incremental keeps analysis state alive between scans so a file
// change only reprocesses its affected closure. The state holds the same
// maps as the context it was captured from; a rescan updates them in place
// and replaces the graph with a freshly built one.
package incremental

import (
	"github.com/archlint/archlint/internal/detect"
	"github.com/archlint/archlint/internal/framework"
	"github.com/archlint/archlint/internal/graph"
	"github.com/archlint/archlint/internal/parser"
)

// cacheKey identifies one file-local detector result.
type cacheKey struct {
	DetectorID string
	Path       string
}

// State is the cross-scan analysis state for one project.
type State struct {
	ProjectRoot string
	ConfigHash  string

	Graph              *graph.DependencyGraph
	FileSymbols        map[string]*parser.FileSymbols
	FileMetrics        map[string]detect.FileMetrics
	FunctionComplexity map[string][]parser.FunctionComplexity

	FileHashes map[string]string
	ChurnMap   map[string]int

	// ReverseDeps maps a file to the set of files importing it.
	ReverseDeps map[string]map[string]bool

	Frameworks          []framework.Framework
	FileTypes           map[string]framework.FileType
	ScriptEntryPoints   map[string]bool
	DynamicLoadPatterns []string

	fileLocalCache map[cacheKey][]detect.ArchSmell
}

// NewState creates empty state bound to a project root and config hash.
func NewState(projectRoot, configHash string) *State {
	return &State{
		ProjectRoot:        projectRoot,
		ConfigHash:         configHash,
		Graph:              graph.New(),
		FileSymbols:        map[string]*parser.FileSymbols{},
		FileMetrics:        map[string]detect.FileMetrics{},
		FunctionComplexity: map[string][]parser.FunctionComplexity{},
		FileHashes:         map[string]string{},
		ChurnMap:           map[string]int{},
		ReverseDeps:        map[string]map[string]bool{},
		FileTypes:          map[string]framework.FileType{},
		ScriptEntryPoints:  map[string]bool{},
		fileLocalCache:     map[cacheKey][]detect.ArchSmell{},
	}
}

// Invalidate clears everything. Called when the config hash changes;
// partial invalidation is deliberately not attempted.
func (s *State) Invalidate(configHash string) {
	*s = *NewState(s.ProjectRoot, configHash)
}

// RebuildReverseDeps recomputes the reverse-dependency index from the
// resolved imports of every file.
func (s *State) RebuildReverseDeps() {
	s.ReverseDeps = map[string]map[string]bool{}
	for importer, symbols := range s.FileSymbols {
		for _, imp := range symbols.Imports {
			target := imp.Source
			if _, known := s.FileSymbols[target]; !known {
				continue
			}
			if s.ReverseDeps[target] == nil {
				s.ReverseDeps[target] = map[string]bool{}
			}
			s.ReverseDeps[target][importer] = true
		}
	}
}

// CachedFileLocal returns the cached smells of a file-local detector for one
// file.
func (s *State) CachedFileLocal(detectorID, path string) ([]detect.ArchSmell, bool) {
	smells, ok := s.fileLocalCache[cacheKey{DetectorID: detectorID, Path: path}]
	return smells, ok
}

// StoreFileLocal records the smells of a file-local detector for one file.
func (s *State) StoreFileLocal(detectorID, path string, smells []detect.ArchSmell) {
	s.fileLocalCache[cacheKey{DetectorID: detectorID, Path: path}] = smells
}

// DropFileLocal evicts every cached file-local result for a file, across
// detectors.
func (s *State) DropFileLocal(path string) {
	for key := range s.fileLocalCache {
		if key.Path == path {
			delete(s.fileLocalCache, key)
		}
	}
}

// RemoveFile drops all per-file state for a deleted file.
func (s *State) RemoveFile(path string) {
	delete(s.FileSymbols, path)
	delete(s.FileMetrics, path)
	delete(s.FunctionComplexity, path)
	delete(s.FileHashes, path)
	delete(s.FileTypes, path)
	s.DropFileLocal(path)
}
