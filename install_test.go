package rebuild

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
}

func TestFindArtifacts(t *testing.T) {
	buildDir := t.TempDir()
	writeFile(t, filepath.Join(buildDir, "Release", "WebChimera.js.node"), "binary")
	writeFile(t, filepath.Join(buildDir, "Release", "obj", "helper.node"), "binary")
	writeFile(t, filepath.Join(buildDir, "CMakeFiles", "probe.node"), "scratch")
	writeFile(t, filepath.Join(buildDir, "Release", "WebChimera.js.lib"), "import lib")
	require.NoError(t, os.MkdirAll(filepath.Join(buildDir, "dir.node"), 0o755))

	artifacts, err := findArtifacts(buildDir)
	require.NoError(t, err)

	assert.Equal(t, []string{"Release/WebChimera.js.node", "Release/obj/helper.node"}, artifacts)
}

func TestFindArtifactsEmpty(t *testing.T) {
	artifacts, err := findArtifacts(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, artifacts)
}

func TestStageArtifacts(t *testing.T) {
	buildDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "nested", "lib")
	writeFile(t, filepath.Join(buildDir, "Release", "addon.node"), "binary")

	staged, err := stageArtifacts(buildDir, outDir, []string{"Release/addon.node"})
	require.NoError(t, err)

	dest := filepath.Join(outDir, "addon.node")
	assert.Equal(t, []string{dest}, staged)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "binary", string(data))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100, "executable bit is preserved")
}

func TestStageArtifactsIntoArtifactDirectory(t *testing.T) {
	buildDir := t.TempDir()
	artifact := filepath.Join(buildDir, "Release", "addon.node")
	writeFile(t, artifact, "compiled module")

	staged, err := stageArtifacts(buildDir, filepath.Join(buildDir, "Release"), []string{"Release/addon.node"})
	require.NoError(t, err)
	assert.Equal(t, []string{artifact}, staged)

	data, err := os.ReadFile(artifact)
	require.NoError(t, err)
	assert.Equal(t, "compiled module", string(data))
}

func TestStageArtifactsWithoutOutDir(t *testing.T) {
	staged, err := stageArtifacts(t.TempDir(), "", []string{"Release/addon.node"})
	require.NoError(t, err)
	assert.Nil(t, staged)
}

func TestStageArtifactsRejectsNameClash(t *testing.T) {
	buildDir := t.TempDir()
	writeFile(t, filepath.Join(buildDir, "Release", "addon.node"), "a")
	writeFile(t, filepath.Join(buildDir, "Debug", "addon.node"), "b")

	_, err := stageArtifacts(buildDir, t.TempDir(), []string{"Debug/addon.node", "Release/addon.node"})
	assert.ErrorContains(t, err, "would both be staged as addon.node")
}
