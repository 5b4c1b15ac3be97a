package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "http://localhost:8000", cfg.Server)
	assert.Zero(t, cfg.RequestTimeout)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, "envask.yaml", `
server: http://agent.internal:9000
listen: ":9100"
journal: /tmp/envask.db
log_level: debug
request_timeout: 45s
cancel_superseded: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://agent.internal:9000", cfg.Server)
	assert.Equal(t, ":9100", cfg.Listen)
	assert.Equal(t, "/tmp/envask.db", cfg.Journal)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.CancelSuperseded)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, "envask.yaml", "server: http://from-file:1\nlog_level: warn\n")

	t.Setenv("ENVASK_SERVER", "http://from-env:2")
	t.Setenv("ENVASK_REQUEST_TIMEOUT", "2s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:2", cfg.Server)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
}

func TestDotEnvLoaded(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, ".env", "ENVASK_JOURNAL=from-dotenv.db\n")
	t.Cleanup(func() { _ = os.Unsetenv("ENVASK_JOURNAL") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.db", cfg.Journal)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.yaml", "server: [unterminated\n")
	_, err = Load(bad)
	assert.Error(t, err)

	level := writeFile(t, dir, "level.yaml", "log_level: loud\n")
	_, err = Load(level)
	assert.ErrorContains(t, err, "log_level")

	t.Setenv("ENVASK_REQUEST_TIMEOUT", "soon")
	_, err = Load("")
	assert.ErrorContains(t, err, "ENVASK_REQUEST_TIMEOUT")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Server = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.RequestTimeout = -time.Second
	assert.Error(t, cfg.Validate())
}
