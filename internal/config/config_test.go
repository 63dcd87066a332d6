package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
store:
  uri: sqlite://var/sessions
limits:
  delete_batch_size: 25
  event_page_size: 10
log:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite://var/sessions", cfg.Store.URI)
	assert.Equal(t, 25, cfg.Limits.DeleteBatchSize)
	assert.Equal(t, 10, cfg.Limits.EventPageSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
store:
  uri: memory://test/main
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory://test/main", cfg.Store.URI)
	assert.Equal(t, Default().Limits, cfg.Limits)
	assert.Equal(t, Default().Log, cfg.Log)
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	path := writeConfig(t, `
store:
  uri: memory://test/main
  flavor: vanilla
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_SchemaViolations(t *testing.T) {
	cases := map[string]string{
		"empty uri":       "store:\n  uri: \"\"\n",
		"zero batch size": "limits:\n  delete_batch_size: 0\n",
		"huge page size":  "limits:\n  event_page_size: 100000\n",
		"bad log level":   "log:\n  level: loud\n",
		"bad log format":  "log:\n  format: xml\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LogConfig{Level: "debug"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: "info"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "warn"}.SlogLevel())
	assert.Equal(t, slog.LevelError, LogConfig{Level: "error"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogConfig{}.SlogLevel())
}
