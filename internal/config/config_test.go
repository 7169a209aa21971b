package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadConfig(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Server.RateLimit.Enabled)
	assert.Equal(t, 10.0, cfg.Server.RateLimit.RPS)
	assert.True(t, cfg.Server.Auth.Enabled)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Encoding)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "credit-engine", cfg.RabbitMQ.ExchangeName)
	assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
	assert.Equal(t, "./data", cfg.Ingestion.DataDir)
	assert.Equal(t, "0 3 * * *", cfg.Ingestion.Schedule)
	assert.Equal(t, 30*time.Minute, cfg.Ingestion.Timeout)
}

func TestLoadConfigFromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	content := []byte(`
server:
  port: 9999
  auth:
    enabled: false
logger:
  level: debug
ingestion:
  dataDir: /var/data/credit
  schedule: "30 2 * * *"
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), content, 0o600))

	cfg, err := LoadConfig(dir)

	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.False(t, cfg.Server.Auth.Enabled)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "/var/data/credit", cfg.Ingestion.DataDir)
	assert.Equal(t, "30 2 * * *", cfg.Ingestion.Schedule)
	// Untouched keys keep their defaults.
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "credit-engine", cfg.RabbitMQ.ExchangeName)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("server: [not: valid"), 0o600))

	_, err := LoadConfig(dir)

	assert.Error(t, err)
}
