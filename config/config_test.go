// ABOUTME: Tests for configuration loading and persistence
// ABOUTME: Covers defaults, file values, environment overrides, and validation
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, DefaultDBPath(), cfg.DBPath)
	assert.Equal(t, DefaultLocale, cfg.Locale)
	assert.Equal(t, DefaultTagLimit, cfg.TagLimit)
	assert.Equal(t, DefaultScreen, cfg.Screen)
	assert.Equal(t, DefaultWebPort, cfg.WebPort)
	assert.True(t, cfg.CharmAutoSync)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "prospect", "config.json")

	cfg := Default()
	cfg.Backend = BackendCharm
	cfg.Locale = "en-US"
	cfg.TagLimit = 5
	require.NoError(t, cfg.SaveTo(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, BackendCharm, loaded.Backend)
	assert.Equal(t, "en-US", loaded.Locale)
	assert.Equal(t, 5, loaded.TagLimit)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"backend":"sqlite","locale":"pt-BR"}`), 0600))

	t.Setenv("PROSPECT_BACKEND", "CHARM")
	t.Setenv("PROSPECT_DB_PATH", "/tmp/x.db")
	t.Setenv("PROSPECT_CHARM_AUTO_SYNC", "0")
	t.Setenv("PROSPECT_TAG_LIMIT", "3")
	t.Setenv("PROSPECT_WEB_PORT", "8080")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, BackendCharm, cfg.Backend)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.False(t, cfg.CharmAutoSync)
	assert.Equal(t, 3, cfg.TagLimit)
	assert.Equal(t, 8080, cfg.WebPort)
	assert.False(t, cfg.Charm().AutoSync)
}

func TestDotEnvFillsUnsetVariables(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PROSPECT_SCREEN=grid\n"), 0600))
	t.Setenv("PROSPECT_SCREEN", "")
	require.NoError(t, os.Unsetenv("PROSPECT_SCREEN"))

	cfg, err := LoadFrom(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, "grid", cfg.Screen)
}

func TestInvalidValuesRejected(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "config.json")

	require.NoError(t, os.WriteFile(path, []byte(`{"backend":"postgres"}`), 0600))
	_, err := LoadFrom(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0600))
	_, err = LoadFrom(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0600))
	t.Setenv("PROSPECT_TAG_LIMIT", "many")
	_, err = LoadFrom(path)
	assert.Error(t, err)
}
