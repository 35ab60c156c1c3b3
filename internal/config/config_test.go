package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no leadgen.yaml is found
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int32(10), cfg.Store.MaxConns)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, "https://api.kvk.nl", cfg.KvK.BaseURL)
	assert.Equal(t, 0.3, cfg.Enrichment.MinQualityThreshold)
	assert.Equal(t, 5, cfg.Enrichment.ExtractionConcurrency)
	assert.True(t, cfg.APICache.Enabled)
	assert.Equal(t, 30, cfg.APICache.TTLDays)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
store:
  database_url: postgres://localhost/leadgen
kvk:
  key: test-kvk-key
enrichment:
  min_quality_threshold: 0.5
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "leadgen.yaml"), []byte(content), 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/leadgen", cfg.Store.DatabaseURL)
	assert.Equal(t, "test-kvk-key", cfg.KvK.Key)
	assert.Equal(t, 0.5, cfg.Enrichment.MinQualityThreshold)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply to untouched sections.
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LEADGEN_ANTHROPIC_KEY", "sk-test")
	t.Setenv("LEADGEN_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Anthropic.Key)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestAPICacheTTL(t *testing.T) {
	c := APICacheConfig{TTLDays: 2}
	assert.Equal(t, 48.0, c.TTL().Hours())
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	assert.Error(t, InitLogger(LogConfig{Level: "not-a-level", Format: "json"}))
}
