package rebuild

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
source_dir: native
build_dir: native/build
out_dir: lib
generator: Ninja
config: Debug
parallel: 8
build_args: ["-DWITH_TESTS=OFF"]
env:
  CXXFLAGS: -O2
  VLC_PATH: /opt/vlc
retry:
  max_retries: 2
  delay: 500ms
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFileConfig(t *testing.T) {
	cfg, err := LoadFileConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "native", cfg.SourceDir)
	assert.Equal(t, "native/build", cfg.BuildDir)
	assert.Equal(t, "lib", cfg.OutDir)
	assert.Equal(t, "Ninja", cfg.Generator)
	assert.Equal(t, "Debug", cfg.Config)
	assert.Equal(t, 8, cfg.Parallel)
	assert.Equal(t, []string{"-DWITH_TESTS=OFF"}, cfg.BuildArgs)
	assert.Equal(t, "/opt/vlc", cfg.Env["VLC_PATH"])

	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, Policy{MaxRetries: 2, Delay: 500 * time.Millisecond}, policy)
}

func TestLoadFileConfigMissingFile(t *testing.T) {
	cfg, err := LoadFileConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy(), policy)
}

func TestLoadFileConfigInvalidYAML(t *testing.T) {
	_, err := LoadFileConfig(writeConfig(t, "source_dir: [unterminated"))
	assert.ErrorContains(t, err, "parse config")
}

func TestFileConfigPolicyErrors(t *testing.T) {
	negative := -1

	_, err := (&FileConfig{Retry: RetryConfig{Delay: "soon"}}).Policy()
	assert.ErrorContains(t, err, "retry.delay")

	_, err = (&FileConfig{Retry: RetryConfig{MaxRetries: &negative}}).Policy()
	assert.ErrorContains(t, err, "max retries cannot be negative")
}

func TestFileConfigZeroRetries(t *testing.T) {
	zero := 0
	policy, err := (&FileConfig{Retry: RetryConfig{MaxRetries: &zero}}).Policy()
	require.NoError(t, err)
	assert.Equal(t, 1, policy.MaxAttempts())
	assert.Equal(t, DefaultRetryDelay, policy.Delay)
}

func TestFileConfigApplyTo(t *testing.T) {
	cfg, err := LoadFileConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	opts := Options{
		Runtime:   "node",
		SourceDir: "from-flag",
		Env:       map[string]string{"CXXFLAGS": "-O0"},
	}
	cfg.ApplyTo(&opts)

	assert.Equal(t, "node", opts.Runtime)
	assert.Equal(t, "from-flag", opts.SourceDir, "already-set fields win")
	assert.Equal(t, "native/build", opts.BuildDir)
	assert.Equal(t, "lib", opts.OutDir)
	assert.Equal(t, "Debug", opts.Config)
	assert.Equal(t, 8, opts.Parallel)
	assert.Equal(t, []string{"-DWITH_TESTS=OFF"}, opts.BuildArgs)
	assert.Equal(t, map[string]string{"CXXFLAGS": "-O0", "VLC_PATH": "/opt/vlc"}, opts.Env)
}

func TestPolicyDefaults(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 5, p.MaxRetries)
	assert.Equal(t, 2*time.Second, p.Delay)
	assert.Equal(t, 6, p.MaxAttempts())
	assert.NoError(t, p.Validate())
	assert.Error(t, Policy{Delay: -time.Second}.Validate())
}
