package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  port: \"8080\"\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeTestConfig(t))
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.Sync.CategoriesInterval)
	assert.Equal(t, 30*time.Minute, cfg.Sync.AssetsInterval)
	assert.Equal(t, time.Minute, cfg.Sync.CurrentCandlesInterval)
	assert.Equal(t, 3, cfg.Sync.MaxRetries)
	assert.Equal(t, 60*time.Second, cfg.Sync.RetryDelay)
	assert.Equal(t, 5*time.Second, cfg.Cache.TTL)
}

func TestLoadConfigBareSecondsOverride(t *testing.T) {
	t.Setenv("SYNC_INTERVAL_CATEGORIES", "3600")
	t.Setenv("SYNC_INTERVAL_CURRENT", "90")
	t.Setenv("RETRY_DELAY", "120")

	cfg, err := LoadConfig(writeTestConfig(t))
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.Sync.CategoriesInterval)
	assert.Equal(t, 90*time.Second, cfg.Sync.CurrentCandlesInterval)
	assert.Equal(t, 2*time.Minute, cfg.Sync.RetryDelay)
}

func TestLoadConfigDurationStringOverride(t *testing.T) {
	t.Setenv("SYNC_INTERVAL_ASSETS", "45m")

	cfg, err := LoadConfig(writeTestConfig(t))
	require.NoError(t, err)

	assert.Equal(t, 45*time.Minute, cfg.Sync.AssetsInterval)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
