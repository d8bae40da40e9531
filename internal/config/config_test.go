package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orange4.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1000, cfg.ClockHZ)
	assert.True(t, cfg.ReleaseKeys)
	assert.False(t, cfg.Autorun)
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, "clock_hz = 60\nautorun = true\n"))
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.ClockHZ)
	assert.True(t, cfg.Autorun)
	assert.True(t, cfg.ReleaseKeys, "unset keys keep their defaults")
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "clock_mhz = 60\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clock_mhz")
}

func TestLoadRejectsBadClock(t *testing.T) {
	_, err := Load(writeConfig(t, "clock_hz = 0\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
