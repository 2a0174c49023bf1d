package utils_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authenticare/location-agent/internal/utils"
	"github.com/authenticare/location-agent/pkg/file"
)

const minimalConfig = `
api:
  base_url: "https://api.example.com"

location:
  source: "network"

services:
  tracking:
    enabled: true
    cache_file: "state/last_location.json"
`

// TestLoadConfig_Defaults verifies unset tracking knobs fall back to defaults.
func TestLoadConfig_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalConfig), 0600))

	config, err := utils.LoadConfig(path, file.NewFileService())
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", config.API.BaseURL)
	assert.Equal(t, 15*time.Second, config.API.Timeout)
	assert.Equal(t, 5*time.Minute, config.Services.Tracking.Interval)
	assert.Equal(t, 1.0, config.Services.Tracking.ThresholdKm)
	assert.Equal(t, 30*time.Second, config.Location.WatchInterval)
	assert.True(t, config.Services.Tracking.Enabled)
	assert.False(t, config.Services.Archive.Enabled)
}

// TestLoadConfig_ExplicitValuesKept verifies explicit settings are not overridden.
func TestLoadConfig_ExplicitValuesKept(t *testing.T) {
	explicit := `
api:
  base_url: "https://api.example.com"
  timeout: 3s

services:
  tracking:
    enabled: true
    interval: 90s
    threshold_km: 0.5
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(explicit), 0600))

	config, err := utils.LoadConfig(path, file.NewFileService())
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, config.API.Timeout)
	assert.Equal(t, 90*time.Second, config.Services.Tracking.Interval)
	assert.Equal(t, 0.5, config.Services.Tracking.ThresholdKm)
}

// TestLoadConfig_MissingFile verifies a missing config file is an error.
func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := utils.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), file.NewFileService())
	assert.Error(t, err)
}
