package framework

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, root, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte(content), 0o644))
}

func TestDetectNestJS(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `{"dependencies": {"@nestjs/core": "^10.0.0"}}`)

	frameworks := Detect(root)
	assert.Contains(t, frameworks, NestJS)
}

func TestDetectNextJSByDependency(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `{"dependencies": {"next": "latest"}}`)

	assert.Contains(t, Detect(root), NextJS)
}

func TestDetectNextJSByConfigFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "next.config.js"), []byte("module.exports = {}"), 0o644))

	assert.Contains(t, Detect(root), NextJS)
}

func TestDetectMultiple(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `{"dependencies": {"next": "latest", "@nestjs/common": "latest"}}`)

	frameworks := Detect(root)
	assert.Contains(t, frameworks, NextJS)
	assert.Contains(t, frameworks, NestJS)
}

func TestDetectDevDependencies(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `{"devDependencies": {"react": "latest"}}`)

	assert.Contains(t, Detect(root), React)
}

func TestDetectNothing(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `{"name": "plain"}`)

	assert.Empty(t, Detect(root))
}

func TestDetectSkipsNodeModules(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "node_modules", "some-pkg")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "package.json"),
		[]byte(`{"dependencies": {"next": "latest"}}`), 0o644))

	assert.Empty(t, Detect(root))
}

func TestPresetsAreBundled(t *testing.T) {
	presets := Presets([]Framework{NestJS, NextJS, React})
	require.Len(t, presets, 3)
	// Name-sorted order.
	assert.Equal(t, "nestjs", presets[0].Name)
	assert.Equal(t, "nextjs", presets[1].Name)
	assert.Equal(t, "react", presets[2].Name)
}

func TestClassifyFile(t *testing.T) {
	presets := Presets([]Framework{NestJS, NextJS})

	assert.Equal(t, FileTypeController, ClassifyFile("src/user/user.controller.ts", presets))
	assert.Equal(t, FileTypeModule, ClassifyFile("src/app.module.ts", presets))
	assert.Equal(t, FileTypePage, ClassifyFile("pages/index.tsx", presets))
	assert.Equal(t, FileTypeUnknown, ClassifyFile("src/util.ts", presets))
}

func TestNestPresetSkipsLcomForControllers(t *testing.T) {
	presets := Presets([]Framework{NestJS})
	require.Len(t, presets, 1)

	rules, ok := presets[0].FileRules[FileTypeController]
	require.True(t, ok)
	assert.Contains(t, rules.SkipDetectors, "lcom")
}
