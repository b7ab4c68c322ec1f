package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hulio7/crptapi/crpt"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, crpt.DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, time.Second, cfg.Limiter.Window)
	assert.Equal(t, 5, cfg.Limiter.Limit)
	assert.Equal(t, "crpt:submissions", cfg.Limiter.RedisKey)
	assert.Empty(t, cfg.Limiter.RedisAddr)
}

func TestLoadFromFile(t *testing.T) {
	content := `
endpoint: "http://localhost:9090/documents/create"
timeout: 10s
limiter:
  window: 1m
  limit: 100
  redis_addr: "localhost:6379"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9090/documents/create", cfg.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, time.Minute, cfg.Limiter.Window)
	assert.Equal(t, 100, cfg.Limiter.Limit)
	assert.Equal(t, "localhost:6379", cfg.Limiter.RedisAddr)
	// untouched keys keep their defaults
	assert.Equal(t, "crpt:submissions", cfg.Limiter.RedisKey)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CRPT_LIMITER_LIMIT", "9")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Limiter.Limit)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	cfg, err := Load("/nonexistent/config.yaml")
	assert.Nil(t, cfg)
	assert.Error(t, err)
}
