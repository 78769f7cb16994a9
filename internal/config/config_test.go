package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "testdata/does-not-exist.toml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "displaydeck", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
	assert.Equal(t, int64(100<<20), cfg.Storage.MaxUploadBytes)
	assert.Equal(t, "blob.cleanup.sweep", cfg.RabbitMQ.CleanupQueue)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "testdata/does-not-exist.toml")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("MYSQL_DB", "displaydeck_test")
	t.Setenv("STORAGE_MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("REDIS_LATEST_TTL_SECONDS", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, int64(1048576), cfg.Storage.MaxUploadBytes)
	assert.Equal(t, 2, cfg.Redis.LatestTTLSeconds)
	assert.Contains(t, cfg.MySQLDSN(), "/displaydeck_test?")
}

func TestLoadIgnoresMalformedEnvInt(t *testing.T) {
	t.Setenv("CONFIG_FILE", "testdata/does-not-exist.toml")
	t.Setenv("APP_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.App.Port)
}
