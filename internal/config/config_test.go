package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "interviews.yaml", cfg.Interviews)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
storage:
  type: redis
  redis:
    addr: "redis:6379"
    ttl: 1h
interviews: flows.yaml
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "redis", cfg.Storage.Type)
	assert.Equal(t, "redis:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Storage.Redis.TTL)
	assert.Equal(t, "flows.yaml", cfg.Interviews)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("INTERVIEW_SERVER__ADDR", ":7000")
	t.Setenv("INTERVIEW_STORAGE__TYPE", "redis")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "redis", cfg.Storage.Type)
}

func TestLoadRejectsUnknownStorage(t *testing.T) {
	t.Setenv("INTERVIEW_STORAGE__TYPE", "carrier-pigeon")
	_, err := Load("")
	assert.Error(t, err)
}
