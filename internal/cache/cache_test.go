package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlint/archlint/internal/parser"
)

func sampleParse(lines int) *parser.ParsedFile {
	return &parser.ParsedFile{
		Symbols: parser.FileSymbols{
			Exports: []parser.ExportedSymbol{{Name: "x", Kind: parser.KindVariable, Line: 1}},
			Imports: []parser.ImportedSymbol{{Source: "./y", Name: "y", Line: 1}},
		},
		Lines: lines,
	}
}

func TestCacheRoundTrip(t *testing.T) {
	root := t.TempDir()

	c, err := Load(root, "1.0.0", "cfg", "")
	require.NoError(t, err)

	c.Insert("/p/a.ts", "hash1", sampleParse(10))
	require.NoError(t, c.Save())

	reloaded, err := Load(root, "1.0.0", "cfg", "")
	require.NoError(t, err)

	parsed := reloaded.Get("/p/a.ts", "hash1")
	require.NotNil(t, parsed)
	assert.Equal(t, 10, parsed.Lines)
	// Cache hit is observationally identical to a cold parse.
	assert.Len(t, parsed.Symbols.Exports, 1)
	assert.Len(t, parsed.Symbols.Imports, 1)
}

func TestCacheMissOnContentChange(t *testing.T) {
	root := t.TempDir()
	c, err := Load(root, "1.0.0", "cfg", "")
	require.NoError(t, err)

	c.Insert("/p/a.ts", "hash1", sampleParse(10))
	assert.Nil(t, c.Get("/p/a.ts", "hash2"))
}

func TestCacheInvalidatedByConfigHash(t *testing.T) {
	root := t.TempDir()
	c, err := Load(root, "1.0.0", "cfg-a", "")
	require.NoError(t, err)
	c.Insert("/p/a.ts", "hash1", sampleParse(10))
	require.NoError(t, c.Save())

	reloaded, err := Load(root, "1.0.0", "cfg-b", "")
	require.NoError(t, err)
	assert.Nil(t, reloaded.Get("/p/a.ts", "hash1"))
}

func TestCacheInvalidatedByAppVersion(t *testing.T) {
	root := t.TempDir()
	c, err := Load(root, "1.0.0", "cfg", "")
	require.NoError(t, err)
	c.Insert("/p/a.ts", "hash1", sampleParse(10))
	require.NoError(t, c.Save())

	reloaded, err := Load(root, "2.0.0", "cfg", "")
	require.NoError(t, err)
	assert.Nil(t, reloaded.Get("/p/a.ts", "hash1"))
}

func TestGitHeadChangeDropsOnlyChurn(t *testing.T) {
	root := t.TempDir()
	c, err := Load(root, "1.0.0", "cfg", "head-1")
	require.NoError(t, err)
	c.Insert("/p/a.ts", "hash1", sampleParse(10))
	c.SetChurnMap(map[string]int{"/p/a.ts": 5})
	require.NoError(t, c.Save())

	reloaded, err := Load(root, "1.0.0", "cfg", "head-2")
	require.NoError(t, err)
	assert.NotNil(t, reloaded.Get("/p/a.ts", "hash1"), "parse entries survive a HEAD change")
	assert.Nil(t, reloaded.ChurnMap(), "churn map is invalidated by a HEAD change")
}

func TestCacheDirPrefersNodeModules(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, filepath.Join(root, ".archlint-cache"), Dir(root))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules"), 0o755))
	assert.Equal(t, filepath.Join(root, "node_modules", ".cache", "archlint"), Dir(root))
}

func TestClear(t *testing.T) {
	root := t.TempDir()
	c, err := Load(root, "1.0.0", "cfg", "")
	require.NoError(t, err)
	c.Insert("/p/a.ts", "h", sampleParse(1))
	require.NoError(t, c.Save())

	require.NoError(t, Clear(root))
	_, err = os.Stat(filepath.Join(root, ".archlint-cache"))
	assert.True(t, os.IsNotExist(err))
}

func TestContentHashIsStable(t *testing.T) {
	a := ContentHash([]byte("same"))
	b := ContentHash([]byte("same"))
	other := ContentHash([]byte("different"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, other)
	assert.Len(t, a, 64)
}
