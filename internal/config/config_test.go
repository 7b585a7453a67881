package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ZUUL_DB_PATH", filepath.Join(t.TempDir(), "zuul.db"))

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, 50, cfg.CacheSize)
	assert.Equal(t, 30, cfg.RetentionDays)
	assert.Empty(t, cfg.NotifyURL)
	assert.Equal(t, ReloadOnMutation, cfg.ReloadMode)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ZUUL_ENV", "production")
	t.Setenv("ZUUL_HTTP_PORT", "9090")
	t.Setenv("ZUUL_DB_PATH", filepath.Join(t.TempDir(), "custom.db"))
	t.Setenv("ZUUL_CACHE_ENABLED", "true")
	t.Setenv("ZUUL_CACHE_SIZE", "200")
	t.Setenv("ZUUL_RETENTION_DAYS", "90")
	t.Setenv("ZUUL_RELOAD_MODE", "interval")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, 200, cfg.CacheSize)
	assert.Equal(t, 90, cfg.RetentionDays)
	assert.Equal(t, ReloadInterval, cfg.ReloadMode)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("ZUUL_DB_PATH", filepath.Join(t.TempDir(), "zuul.db"))
	t.Setenv("ZUUL_CACHE_ENABLED", "not-a-bool")
	t.Setenv("ZUUL_CACHE_SIZE", "not-a-number")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, 50, cfg.CacheSize)
}

func TestLoad_CacheSizeFloor(t *testing.T) {
	t.Setenv("ZUUL_DB_PATH", filepath.Join(t.TempDir(), "zuul.db"))
	t.Setenv("ZUUL_CACHE_SIZE", "0")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, 1, cfg.CacheSize)
}
