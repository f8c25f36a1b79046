package cli

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
	path := filepath.Join(t.TempDir(), "semmeta.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Empty(t, cfg.Taxonomy)
	assert.Empty(t, cfg.Journal)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
taxonomy: ./taxonomy
journal: semmeta.db
log_level: debug
format: json
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "./taxonomy", cfg.Taxonomy)
	assert.Equal(t, "semmeta.db", cfg.Journal)
	assert.Equal(t, "json", cfg.Format)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "journal: file.db\n")
	t.Setenv("SEMMETA_JOURNAL", "env.db")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.Journal)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_InvalidLogLevel(t *testing.T) {
	path := writeConfig(t, "log_level: loud\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid log_level "loud"`)
}
