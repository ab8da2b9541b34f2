package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "data/skin_prices.db", cfg.Store.Sqlite.Path)
	require.Equal(t, 30000, cfg.Store.Sqlite.BusyTimeoutMs)
	require.Equal(t, 730, cfg.Steam.AppID)
	require.Equal(t, 3, cfg.Steam.Currency)
	require.Equal(t, 2, cfg.Update.RequestDelaySec)
	require.Equal(t, 5, cfg.Update.AutoIntervalMin)
	require.Equal(t, 365, cfg.Retention.KeepDays)
	require.Equal(t, 3600, cfg.Notify.DedupWindowSec)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
log:
  level: debug
steam:
  currency: 1
update:
  auto_interval_min: 0
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 1, cfg.Steam.Currency)
	require.Zero(t, cfg.Update.AutoIntervalMin)

	// Untouched sections keep their defaults.
	require.Equal(t, 730, cfg.Steam.AppID)
	require.Equal(t, "data/watchlist.json", cfg.Watchlist.Path)
}

func TestLoad_MalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a mapping"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("SKIN_TRACKER_DB", "/tmp/override.db")
	t.Setenv("STEAM_BASE_URL", "http://localhost:9999/priceoverview/")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "/tmp/override.db", cfg.Store.Sqlite.Path)
	require.Equal(t, "http://localhost:9999/priceoverview/", cfg.Steam.BaseURL)
}

func TestLoad_InvalidPortEnvFails(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
