package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukex/flowsuite/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", cfg.API.URL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.Otel.Enabled)
	assert.Equal(t, 8080, cfg.Sandbox.Port)
	assert.Equal(t, "gochannel", cfg.Sandbox.EventBus)
	assert.Equal(t, time.Duration(0), cfg.Sandbox.ExecutionDelay)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")

	err := os.WriteFile(path, []byte(`
api:
  url: https://workflows.example.com/api/
  headers:
    authorization: Bearer abc
log:
  level: debug
  format: json
sandbox:
  database_url: "sqlite://:memory:"
  execution_delay: 250ms
`), 0o600)
	require.NoError(t, err)

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, "https://workflows.example.com/api", cfg.API.URL)
	assert.Equal(t, "Bearer abc", cfg.API.Headers["authorization"])
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "sqlite://:memory:", cfg.Sandbox.DatabaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Sandbox.ExecutionDelay)
}

func TestLoad_WorkingDirectoryFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "flowsuite.yaml"), []byte("log:\n  level: warn\n"), 0o600))

	cfg, err := config.Load("")

	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FLOWSUITE_API_URL", "http://10.0.0.5:9000/api")
	t.Setenv("FLOWSUITE_SANDBOX_PORT", "9191")

	cfg, err := config.Load("")

	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:9000/api", cfg.API.URL)
	assert.Equal(t, 9191, cfg.Sandbox.Port)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
