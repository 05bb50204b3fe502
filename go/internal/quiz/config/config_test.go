package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, 30, cfg.API.TimeoutSeconds)
	assert.Equal(t, 500*time.Millisecond, cfg.StreamBaseDelay())
	assert.Equal(t, 10*time.Second, cfg.StreamMaxDelay())
	assert.Equal(t, 10, cfg.Round.DurationSeconds)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api:
  base_url: http://quiz.example.com
stream:
  max_delay_millis: 5000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://quiz.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.StreamMaxDelay())
	// unset keys keep their defaults
	assert.Equal(t, 500*time.Millisecond, cfg.StreamBaseDelay())
	assert.Equal(t, 30, cfg.API.TimeoutSeconds)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: http://from-file\n"), 0o644))

	t.Setenv("QUIZ_API_URL", "http://from-env")
	t.Setenv("QUIZ_ROUND_SECONDS", "15")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env", cfg.API.BaseURL)
	assert.Equal(t, 15, cfg.Round.DurationSeconds)
}

func TestBadEnvIntKeepsDefault(t *testing.T) {
	t.Setenv("QUIZ_API_TIMEOUT_SECONDS", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.API.TimeoutSeconds)
}

func TestMissingFileIsAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
