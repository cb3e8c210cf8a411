package packagejson

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	canonical, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return canonical
}

func TestScriptEntryPoints(t *testing.T) {
	root := t.TempDir()
	entry := write(t, root, "src/server.ts", "export {}")
	write(t, root, "package.json", `{
  "scripts": {
    "start": "ts-node src/server.ts"
  }
}`)

	cfg := Parse(root)
	assert.True(t, cfg.EntryPoints[entry])
}

func TestDistPathsFallBackToSource(t *testing.T) {
	root := t.TempDir()
	source := write(t, root, "src/main.ts", "export {}")
	write(t, root, "package.json", `{
  "scripts": {
    "start": "node dist/main.js"
  }
}`)

	cfg := Parse(root)
	assert.True(t, cfg.EntryPoints[source])
}

func TestDynamicLoadPatterns(t *testing.T) {
	root := t.TempDir()
	write(t, root, "package.json", `{
  "scripts": {
    "test": "mocha build/tests/**/*.js"
  }
}`)

	cfg := Parse(root)
	assert.Contains(t, cfg.DynamicLoadPatterns, "src/tests/**/*.ts")
}

func TestNodeModulesManifestsIgnored(t *testing.T) {
	root := t.TempDir()
	write(t, root, "node_modules/pkg/src/index.ts", "export {}")
	write(t, root, "node_modules/pkg/package.json", `{
  "scripts": { "start": "node src/index.ts" }
}`)

	cfg := Parse(root)
	assert.Empty(t, cfg.EntryPoints)
}

func TestMainFieldIsEntryPoint(t *testing.T) {
	root := t.TempDir()
	main := write(t, root, "index.ts", "export {}")
	write(t, root, "package.json", `{"main": "index.ts"}`)

	cfg := Parse(root)
	assert.True(t, cfg.EntryPoints[main])
}
