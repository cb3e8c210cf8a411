package tsconfig

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
	return path
}

func TestLoadPlainConfig(t *testing.T) {
	root := t.TempDir()
	path := write(t, root, "tsconfig.json", `{
  "compilerOptions": {
    "baseUrl": ".",
    "paths": { "@app/*": ["src/app/*"] },
    "outDir": "dist"
  },
  "exclude": ["node_modules", "dist"]
}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.CompilerOptions)
	assert.Equal(t, []string{"src/app/*"}, cfg.CompilerOptions.Paths["@app/*"])
	assert.Equal(t, "dist", cfg.CompilerOptions.OutDir)
	assert.Equal(t, []string{"node_modules", "dist"}, cfg.Exclude)
}

func TestLoadToleratesCommentsAndTrailingCommas(t *testing.T) {
	root := t.TempDir()
	path := write(t, root, "tsconfig.json", `{
  // project config
  "compilerOptions": {
    "baseUrl": "src", /* inline */
  },
}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "src", cfg.CompilerOptions.BaseURL)
}

func TestExtendsRelativeChildWins(t *testing.T) {
	root := t.TempDir()
	write(t, root, "base.json", `{
  "compilerOptions": {
    "baseUrl": "base-src",
    "paths": { "@shared/*": ["shared/*"], "@app/*": ["base-app/*"] }
  },
  "exclude": ["dist"]
}`)
	path := write(t, root, "tsconfig.json", `{
  "extends": "./base.json",
  "compilerOptions": {
    "paths": { "@app/*": ["child-app/*"] }
  },
  "exclude": ["tmp"]
}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"child-app/*"}, cfg.CompilerOptions.Paths["@app/*"], "child overrides parent")
	assert.Equal(t, []string{"shared/*"}, cfg.CompilerOptions.Paths["@shared/*"], "parent contributes missing aliases")
	assert.Equal(t, "base-src", cfg.CompilerOptions.BaseURL)
	assert.ElementsMatch(t, []string{"tmp", "dist"}, cfg.Exclude)
}

func TestExtendsPackageStyleThroughNodeModules(t *testing.T) {
	root := t.TempDir()
	write(t, root, "node_modules/@tsconfig/node18/tsconfig.json", `{
  "compilerOptions": { "outDir": "build" }
}`)
	path := write(t, root, "app/tsconfig.json", `{
  "extends": "@tsconfig/node18/tsconfig.json"
}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "build", cfg.CompilerOptions.OutDir)
}

func TestExtendsCycleDetected(t *testing.T) {
	root := t.TempDir()
	write(t, root, "a.json", `{"extends": "./b.json"}`)
	path := write(t, root, "b.json", `{"extends": "./a.json"}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular")
}

func TestFindAndLoadMissingIsNil(t *testing.T) {
	root := t.TempDir()
	cfg, err := FindAndLoad(root, "")
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestFindAndLoadExplicitMissingIsError(t *testing.T) {
	root := t.TempDir()
	_, err := FindAndLoad(root, "custom.tsconfig.json")
	assert.Error(t, err)
}
