package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.RateLimitWait)
	assert.Equal(t, []string{"street"}, cfg.RefinableClasses)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := "SERVER_ADDRESS=:9090\nPAGE_SIZE=20\nREFINABLE_CLASSES=street,highway\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o644))
	t.Setenv("PLACES_REQUEST_TIMEOUT", "8s")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ServerAddress)
	assert.Equal(t, 20, cfg.PageSize)
	assert.Equal(t, 8*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"street", "highway"}, cfg.RefinableClasses)
}

func TestLoadConfig_InvalidPageSize(t *testing.T) {
	t.Setenv("PLACES_PAGE_SIZE", "0")

	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestLoadConfig_BaseURLFromEnv(t *testing.T) {
	t.Setenv("PLACES_BASE_URL", "http://places:9000")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://places:9000", cfg.BaseURL)
}
