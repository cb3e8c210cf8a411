package incremental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/detect"
	"github.com/archlint/archlint/internal/parser"
)

func stateWithDeps(t *testing.T, deps map[string][]string) *State {
	t.Helper()
	s := NewState("/p", "hash")
	for file := range deps {
		s.FileSymbols[file] = &parser.FileSymbols{}
	}
	for importer, targets := range deps {
		var imports []parser.ImportedSymbol
		for _, target := range targets {
			if _, ok := s.FileSymbols[target]; !ok {
				s.FileSymbols[target] = &parser.FileSymbols{}
			}
			imports = append(imports, parser.ImportedSymbol{Source: target, Name: "x"})
		}
		s.FileSymbols[importer].Imports = imports
	}
	s.RebuildReverseDeps()
	return s
}

func TestAffectedClosureDirect(t *testing.T) {
	// b imports a.
	s := stateWithDeps(t, map[string][]string{"/p/b.ts": {"/p/a.ts"}})

	affected := s.AffectedClosure([]string{"/p/a.ts"})
	assert.Len(t, affected, 2)
	assert.True(t, affected["/p/a.ts"])
	assert.True(t, affected["/p/b.ts"])
}

func TestAffectedClosureTransitive(t *testing.T) {
	// c imports b, b imports a: touching a affects all three.
	s := stateWithDeps(t, map[string][]string{
		"/p/b.ts": {"/p/a.ts"},
		"/p/c.ts": {"/p/b.ts"},
	})

	affected := s.AffectedClosure([]string{"/p/a.ts"})
	assert.Len(t, affected, 3)
}

func TestAffectedClosureCycleTerminates(t *testing.T) {
	s := stateWithDeps(t, map[string][]string{
		"/p/a.ts": {"/p/b.ts"},
		"/p/b.ts": {"/p/a.ts"},
	})

	affected := s.AffectedClosure([]string{"/p/a.ts"})
	assert.Len(t, affected, 2)
}

func TestAffectedClosureUntouchedFilesStayOut(t *testing.T) {
	s := stateWithDeps(t, map[string][]string{
		"/p/b.ts": {"/p/a.ts"},
		"/p/x.ts": {"/p/y.ts"},
	})

	affected := s.AffectedClosure([]string{"/p/a.ts"})
	assert.False(t, affected["/p/x.ts"])
	assert.False(t, affected["/p/y.ts"])
}

func TestFileLocalCacheRoundTrip(t *testing.T) {
	s := NewState("/p", "hash")
	smells := []detect.ArchSmell{{
		Kind:     detect.KindLargeFile,
		Severity: config.SeverityLow,
		Files:    []string{"/p/a.ts"},
	}}
	s.StoreFileLocal("large_file", "/p/a.ts", smells)

	cached, ok := s.CachedFileLocal("large_file", "/p/a.ts")
	require.True(t, ok)
	assert.Equal(t, smells, cached)

	s.DropFileLocal("/p/a.ts")
	_, ok = s.CachedFileLocal("large_file", "/p/a.ts")
	assert.False(t, ok)
}

func TestInvalidateClearsEverything(t *testing.T) {
	s := stateWithDeps(t, map[string][]string{"/p/b.ts": {"/p/a.ts"}})
	s.StoreFileLocal("large_file", "/p/a.ts", nil)
	s.FileHashes["/p/a.ts"] = "h"

	s.Invalidate("new-hash")

	assert.Equal(t, "new-hash", s.ConfigHash)
	assert.Empty(t, s.FileSymbols)
	assert.Empty(t, s.FileHashes)
	assert.Empty(t, s.ReverseDeps)
	_, ok := s.CachedFileLocal("large_file", "/p/a.ts")
	assert.False(t, ok)
}

func TestRemoveFile(t *testing.T) {
	s := stateWithDeps(t, map[string][]string{"/p/b.ts": {"/p/a.ts"}})
	s.FileHashes["/p/b.ts"] = "h"
	s.RemoveFile("/p/b.ts")

	assert.NotContains(t, s.FileSymbols, "/p/b.ts")
	assert.NotContains(t, s.FileHashes, "/p/b.ts")
}
