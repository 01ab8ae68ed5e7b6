package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docharvest/internal/docobj"
	"git.home.luguber.info/inful/docharvest/internal/foundation/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	assert.Empty(t, cfg.Metrics.Textfile)
	assert.NotNil(t, cfg.Defaults)
}

func TestLoad_File(t *testing.T) {
	t.Setenv("DOCHARVEST_TEST_ROOT", "/src/project")
	path := writeFile(t, t.TempDir(), "docharvest.yaml", `
logging:
  level: DEBUG
  format: json
metrics:
  textfile: /tmp/docharvest.prom
defaults:
  search_paths: ["${DOCHARVEST_TEST_ROOT}"]
  include_source: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	assert.Equal(t, slog.LevelDebug, cfg.Logging.SlogLevel())
	assert.Equal(t, "/tmp/docharvest.prom", cfg.Metrics.Textfile)
	assert.Equal(t, docobj.Options{
		"search_paths":   []any{"/src/project"},
		"include_source": false,
	}, cfg.Defaults)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	bad := writeFile(t, dir, "bad.yaml", "logging: [unclosed")
	_, err = Load(bad)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	level := writeFile(t, dir, "level.yaml", "logging:\n  level: chatty\n")
	_, err = Load(level)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chatty")
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "docharvest.yaml", "logging:\n  level: info\n")
	t.Chdir(dir)
	t.Setenv(EnvConfigPath, path)
	t.Setenv(EnvLogLevel, "warning")
	t.Setenv(EnvLogFormat, "JSON")
	t.Setenv(EnvMetricsTextfile, filepath.Join(dir, "m.prom"))

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, LogLevelWarn, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	assert.Equal(t, filepath.Join(dir, "m.prom"), cfg.Metrics.Textfile)
}

func TestLoadFromEnv_DotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "DOCHARVEST_LOG_FORMAT=json\nDOCHARVEST_LOG_LEVEL=debug\n")
	t.Chdir(dir)
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvMetricsTextfile, "")
	t.Setenv(EnvLogLevel, "error")
	// Registered with t.Setenv so cleanup restores it, then unset so .env can fill it.
	t.Setenv(EnvLogFormat, "")
	require.NoError(t, os.Unsetenv(EnvLogFormat))

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, LogLevelError, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
}

func TestNormalizeHelpers(t *testing.T) {
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("verbose"))
	assert.Equal(t, LogFormatText, NormalizeLogFormat(""))
	assert.Equal(t, slog.LevelInfo, LoggingConfig{}.SlogLevel())
}
