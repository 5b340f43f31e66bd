package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "0", cfg.Ground)
	assert.Equal(t, 128, cfg.SessionCapacity)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.MetricsEnabled)
}

func TestFromYAMLOverridesDefaults(t *testing.T) {
	doc := []byte(`
ground: vss
ground_aliases: [agnd, dgnd]
log_level: debug
metrics_enabled: true
`)
	cfg, err := FromYAML(doc)
	require.NoError(t, err)
	assert.Equal(t, "vss", cfg.Ground)
	assert.Equal(t, []string{"agnd", "dgnd"}, cfg.GroundAliases)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.MetricsEnabled)
	// Untouched fields keep their defaults.
	assert.Equal(t, 128, cfg.SessionCapacity)
}

func TestFromYAMLBadDocument(t *testing.T) {
	_, err := FromYAML([]byte("ground: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Config{Ground: "", SessionCapacity: 0, LogLevel: "loud"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Config.Ground")
	assert.Contains(t, err.Error(), "Config.SessionCapacity")
	assert.Contains(t, err.Error(), "Config.LogLevel")
}

func TestValidateEmptyLogLevelSkipsOneOf(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = ""
	require.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "core.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session_capacity: 16\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.SessionCapacity)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}
