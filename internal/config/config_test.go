package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "/data/movinv.db", cfg.DBPath)
	assert.Equal(t, "claude", cfg.VisionBackend)
	assert.Equal(t, "llava", cfg.OllamaModel)
	assert.Equal(t, "/data/photos", cfg.PhotoPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.InDelta(t, 0.5, cfg.VisionRPS, 1e-9)
	assert.Equal(t, 3, cfg.VisionRetries)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("VISION_BACKEND", "ollama")
	t.Setenv("VISION_RPS", "2.5")
	t.Setenv("VISION_RETRIES", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "ollama", cfg.VisionBackend)
	assert.InDelta(t, 2.5, cfg.VisionRPS, 1e-9)
	assert.Equal(t, 5, cfg.VisionRetries)
}

func TestLoadBadNumericEnvFallsBack(t *testing.T) {
	t.Setenv("VISION_RPS", "fast")
	t.Setenv("VISION_RETRIES", "many")

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.5, cfg.VisionRPS, 1e-9)
	assert.Equal(t, 3, cfg.VisionRetries)
}

func TestLoadYAMLOverlayWinsOverEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"listen_addr: \":7000\"\nvision_backend: ollama\nvision_rps: 1.5\n",
	), 0600))

	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, "ollama", cfg.VisionBackend)
	assert.InDelta(t, 1.5, cfg.VisionRPS, 1e-9)
	// Keys absent from the file keep their env defaults.
	assert.Equal(t, "/data/movinv.db", cfg.DBPath)
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadMalformedConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: [oops"), 0600))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	assert.Error(t, err)
}
