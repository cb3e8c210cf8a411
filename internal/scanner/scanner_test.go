package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func relPaths(t *testing.T, root string, files []string) []string {
	t.Helper()
	canonicalRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	var rels []string
	for _, f := range files {
		rel, err := filepath.Rel(canonicalRoot, f)
		require.NoError(t, err)
		rels = append(rels, filepath.ToSlash(rel))
	}
	return rels
}

func TestScanFiltersExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.ts", "export {}")
	writeFile(t, root, "src/b.js", "module.exports = {}")
	writeFile(t, root, "README.md", "# readme")

	files, err := New(root, []string{"ts", "js"}, nil, nil).Scan()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"src/a.ts", "src/b.js"}, relPaths(t, root, files))
}

func TestScanSkipsStandardDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/ok.ts", "")
	writeFile(t, root, "node_modules/pkg/index.ts", "")
	writeFile(t, root, "dist/out.ts", "")
	writeFile(t, root, "build/out.ts", "")
	writeFile(t, root, ".next/app.ts", "")
	writeFile(t, root, "coverage/cov.ts", "")

	files, err := New(root, []string{"ts"}, nil, nil).Scan()
	require.NoError(t, err)

	assert.Equal(t, []string{"src/ok.ts"}, relPaths(t, root, files))
}

func TestScanHonorsIgnoreGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/keep.ts", "")
	writeFile(t, root, "src/generated/gen.ts", "")

	files, err := New(root, []string{"ts"}, []string{"**/generated/**"}, nil).Scan()
	require.NoError(t, err)

	assert.Equal(t, []string{"src/keep.ts"}, relPaths(t, root, files))
}

func TestScanHonorsIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, IgnoreFileName, "# fixtures are not product code\n**/fixtures/**\n")
	writeFile(t, root, "src/keep.ts", "")
	writeFile(t, root, "src/fixtures/sample.ts", "")

	files, err := New(root, []string{"ts"}, nil, nil).Scan()
	require.NoError(t, err)

	assert.Equal(t, []string{"src/keep.ts"}, relPaths(t, root, files))
}

func TestScanSkipsHiddenDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/ok.ts", "")
	writeFile(t, root, ".git/hooks/x.ts", "")

	files, err := New(root, []string{"ts"}, nil, nil).Scan()
	require.NoError(t, err)

	assert.Equal(t, []string{"src/ok.ts"}, relPaths(t, root, files))
}
