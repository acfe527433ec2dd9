package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFlags(t *testing.T) {
	cfg, err := Load([]string{
		"-api-key", "PKTEST",
		"-api-secret", "shhh",
		"-endpoint", "https://paper-api.alpaca.markets",
		"-notification-delay", "2s",
	})
	require.NoError(t, err)

	assert.Equal(t, "PKTEST", cfg.APIKey)
	assert.Equal(t, "shhh", cfg.APISecret)
	assert.Equal(t, 2*time.Second, cfg.NotificationDelay)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"api_key: PKFILE\napi_secret: filesecret\nendpoint: https://api.alpaca.markets\ndry_run: true\n"), 0o644))

	cfg, err := Load([]string{"-config", path})
	require.NoError(t, err)

	assert.Equal(t, "PKFILE", cfg.APIKey)
	assert.True(t, cfg.DryRun)
}

func TestValidateAggregatesErrors(t *testing.T) {
	cfg := Config{}

	err := cfg.Validate()
	require.Error(t, err)

	// every missing field is reported, not just the first
	assert.Contains(t, err.Error(), "api_key")
	assert.Contains(t, err.Error(), "api_secret")
	assert.Contains(t, err.Error(), "endpoint")
}

func TestValidateDryRunNeedsNoCredentials(t *testing.T) {
	cfg := Config{DryRun: true}
	assert.NoError(t, cfg.Validate())
}
