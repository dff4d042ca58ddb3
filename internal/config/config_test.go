package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, "database:\n  path: "+filepath.Join(dir, "app.db")+"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, 5.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, 24*time.Hour, cfg.ViewDedupWindow())
	assert.Equal(t, time.Duration(0), cfg.CacheTTL())
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_API_KEY", "secret-123")
	dir := t.TempDir()
	path := writeConfig(t, `
server:
  listen_addr: ":9000"
  api_key: ${TEST_API_KEY}
database:
  path: `+filepath.Join(dir, "app.db")+`
redis:
  address: "localhost:6379"
  cache_ttl_seconds: 300
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.ListenAddr)
	assert.Equal(t, "secret-123", cfg.Server.APIKey)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
