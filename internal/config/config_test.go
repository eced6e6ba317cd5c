package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("MDTABS_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".local", "share", "mdtabs", "mdtabs.db"), cfg.Database.Path)
	require.Equal(t, "mdtabs.session", cfg.Session.Key)
	require.Equal(t, 5<<20, cfg.Session.MaxBytes)
	require.Equal(t, "catppuccin-mocha", cfg.Render.Style)
	require.True(t, cfg.Watch.Enabled)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[session]
key = "work"
max_bytes = 1024

[render]
style = "dracula"
`), 0o600))
	t.Setenv("MDTABS_CONFIG", path)
	t.Setenv("MDTABS_RENDER_WIDTH", "72")
	t.Setenv("MDTABS_WATCH_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "work", cfg.Session.Key)
	require.Equal(t, 1024, cfg.Session.MaxBytes)
	require.Equal(t, "dracula", cfg.Render.Style)
	require.Equal(t, 72, cfg.Render.Width)
	require.False(t, cfg.Watch.Enabled)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MDTABS_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))

	_, err := Load()
	require.NoError(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "nested", "config.toml")
	t.Setenv("MDTABS_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.Render.Style = "monokai"
	cfg.Session.MaxBytes = 2048
	require.NoError(t, Save(cfg))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, "monokai", got.Render.Style)
	require.Equal(t, 2048, got.Session.MaxBytes)
}
