package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aderrors "github.com/chazuruo/artdiff/internal/errors"
)

// TestDetectConfigPath_NoConfig tests that the result is empty or absolute.
func TestDetectConfigPath_NoConfig(t *testing.T) {
	path := DetectConfigPath()
	if path != "" && !filepath.IsAbs(path) {
		t.Errorf("DetectConfigPath() returned non-absolute path: %s", path)
	}
}

// TestLoad_ValidConfig tests loading a valid config file.
func TestLoad_ValidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	configContent := `
[github]
owner = "bokeh"
max_pages = 3

[build]
workflow = "packages.yaml"
artifacts = ["pip"]

[build.exclude]
sdist = ["examples/"]

[log]
level = "debug"
format = "json"
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "bokeh", cfg.GitHub.Owner)
	assert.Equal(t, 3, cfg.GitHub.MaxPages)
	assert.Equal(t, "packages.yaml", cfg.Build.Workflow)
	assert.Equal(t, []string{"pip"}, cfg.Build.Artifacts)
	assert.Equal(t, []string{"examples/"}, cfg.Build.Exclude["sdist"])
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	// Untouched fields keep their defaults.
	assert.Equal(t, 30, cfg.GitHub.PerPage)
	assert.Equal(t, "pixi.lock", cfg.Lock.File)
}

// TestLoad_InvalidTOML tests that invalid TOML returns a config error.
func TestLoad_InvalidTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[github\nowner = 1\n"), 0644))

	_, err := Load(configPath)
	require.Error(t, err)
	ce, ok := aderrors.AsConfigError(err)
	require.True(t, ok)
	assert.Equal(t, configPath, ce.Path)
}

// TestLoad_ValidationFailure tests that invalid values are rejected.
func TestLoad_ValidationFailure(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[github]\nper_page = 500\n"), 0644))

	_, err := Load(configPath)
	require.Error(t, err)
	assert.True(t, aderrors.IsInvalid(err))
	assert.Contains(t, err.Error(), "github.per_page")
}

// TestLoad_Missing tests that a missing file reports not found.
func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.True(t, aderrors.IsNotFound(err))
}

// TestEnvOverrides verifies ARTDIFF_* variables override file values.
func TestEnvOverrides(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[github]\nowner = \"bokeh\"\n"), 0644))

	t.Setenv("ARTDIFF_GITHUB_OWNER", "holoviz-dev")
	t.Setenv("ARTDIFF_FETCH_WORKERS", "4")
	t.Setenv("ARTDIFF_TUI_ENABLED", "off")
	t.Setenv("ARTDIFF_BUILD_ARTIFACTS", "pip, conda")
	t.Setenv("ARTDIFF_GITHUB_MAX_PAGES", "not-a-number")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "holoviz-dev", cfg.GitHub.Owner)
	assert.Equal(t, 4, cfg.Fetch.Workers)
	assert.False(t, cfg.TUI.Enabled)
	assert.Equal(t, []string{"pip", "conda"}, cfg.Build.Artifacts)
	assert.Equal(t, 9, cfg.GitHub.MaxPages, "unparseable ints are ignored")
}

// TestExpandPath verifies tilde expansion of path settings.
func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	t.Setenv("ARTDIFF_CACHE_DIR", "~/artifacts")

	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.toml"))
	// An explicit path that does not exist is an error.
	require.Error(t, err)
	assert.Nil(t, cfg)

	c := DefaultConfig()
	applyEnvOverrides(c)
	expandPath(c)
	assert.Equal(t, filepath.Join(home, "artifacts"), c.Cache.Dir)
}

// TestWrite_RoundTrip writes a config and loads it back.
func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.GitHub.Owner = "pyviz"
	cfg.Build.Exclude = map[string][]string{"sdist": {"examples/"}}
	require.NoError(t, Write(path, cfg, false))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pyviz", loaded.GitHub.Owner)
	assert.Equal(t, []string{"examples/"}, loaded.Build.Exclude["sdist"])

	err = Write(path, cfg, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, Write(path, cfg, true))
}
