package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root, rel string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("export {}"), 0o644))
	canonical, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return canonical
}

func TestResolveRelativeWithExtension(t *testing.T) {
	root := t.TempDir()
	target := touch(t, root, "src/b.ts")
	from := touch(t, root, "src/a.ts")

	r := New(root, nil)
	assert.Equal(t, target, r.Resolve("./b", from))
}

func TestResolveExtensionOrder(t *testing.T) {
	root := t.TempDir()
	ts := touch(t, root, "src/mod.ts")
	touch(t, root, "src/mod.js")
	from := touch(t, root, "src/a.ts")

	// .ts wins over .js in the fixed probe order.
	r := New(root, nil)
	assert.Equal(t, ts, r.Resolve("./mod", from))
}

func TestResolveIndexFile(t *testing.T) {
	root := t.TempDir()
	index := touch(t, root, "src/lib/index.ts")
	from := touch(t, root, "src/a.ts")

	r := New(root, nil)
	assert.Equal(t, index, r.Resolve("./lib", from))
}

func TestResolveESMRewrite(t *testing.T) {
	root := t.TempDir()
	ts := touch(t, root, "src/util.ts")
	from := touch(t, root, "src/a.ts")

	// ESM imports name the emitted .js file while the source is .ts.
	r := New(root, nil)
	assert.Equal(t, ts, r.Resolve("./util.js", from))
}

func TestResolveAliasLongestPrefixWins(t *testing.T) {
	root := t.TempDir()
	core := touch(t, root, "src/core/engine.ts")
	touch(t, root, "src/other/engine.ts")
	from := touch(t, root, "src/a.ts")

	r := New(root, map[string]string{
		"@app/*":      "src/other/*",
		"@app/core/*": "src/core/*",
	})
	assert.Equal(t, core, r.Resolve("@app/core/engine", from))
}

func TestResolveRootAndSrcFallback(t *testing.T) {
	root := t.TempDir()
	target := touch(t, root, "src/services/db.ts")
	from := touch(t, root, "src/a.ts")

	r := New(root, nil)
	assert.Equal(t, target, r.Resolve("services/db", from))
}

func TestResolveMissingIsNotError(t *testing.T) {
	root := t.TempDir()
	from := touch(t, root, "src/a.ts")

	r := New(root, nil)
	assert.Empty(t, r.Resolve("lodash", from))
	assert.Empty(t, r.Resolve("./does-not-exist", from))
}
