package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, 20, cfg.HistoryWindow)
	assert.Equal(t, 10, cfg.MaxIterations)
	assert.Equal(t, 5, cfg.MemoryTopK)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "provider: anthropic\nmodel: claude-sonnet-4-0\nhistory_window: 30\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "claude-sonnet-4-0", cfg.Model)
	assert.Equal(t, 30, cfg.HistoryWindow)
	// Unset fields keep defaults.
	assert.Equal(t, 10, cfg.MaxIterations)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: openai\nmax_iterations: 4\n"), 0o600))

	t.Setenv("MINDKEEP_PROVIDER", "mock")
	t.Setenv("MINDKEEP_MAX_ITERATIONS", "7")
	t.Setenv("MINDKEEP_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderMock, cfg.Provider)
	assert.Equal(t, 7, cfg.MaxIterations)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Provider = "carrier-pigeon"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.HistoryWindow = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.MaxIterations = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.MemoryTopK = 0
	assert.Error(t, cfg.Validate())
}

func TestSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
	}
	for in, want := range cases {
		cfg := Default()
		cfg.LogLevel = in
		assert.Equal(t, want, cfg.SlogLevel())
	}
}
