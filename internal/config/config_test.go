package config

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultYAMLMatchesDefault(t *testing.T) {
	cfg, err := Parse([]byte(defaultConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(Path(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseKeepsDefaultsForOmittedKeys(t *testing.T) {
	cfg, err := Parse([]byte(strings.TrimSpace(`
tilt:
  gate: false
  swing_wait: 250ms
sim:
  climb_hook_misses: 2
`)))
	require.NoError(t, err)
	assert.False(t, cfg.Tilt.Gate)
	assert.Equal(t, 250*time.Millisecond, cfg.Tilt.SwingWait)
	assert.Equal(t, 2, cfg.Sim.ClimbHookMisses)
	assert.Equal(t, Default().Heights, cfg.Heights)
	assert.Equal(t, 45.0, cfg.Tilt.MaxAngle)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"unordered heights": func(c *Config) { c.Heights.Latch = c.Heights.PullDown },
		"zero tolerance":    func(c *Config) { c.Heights.Tolerance = 0 },
		"inverted window":   func(c *Config) { c.Tilt.MinAngle = 50 },
		"zero period":       func(c *Config) { c.Timing.Period = 0 },
		"gate off no wait":  func(c *Config) { c.Tilt.Gate = false; c.Tilt.SwingWait = 0 },
		"swing too high":    func(c *Config) { c.Heights.Swing = c.Heights.Extended + 0.1 },
		"negative misses":   func(c *Config) { c.Sim.GrabHookMisses = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}
}

func TestInitDirWritesConfigOnce(t *testing.T) {
	projectDir := t.TempDir()
	require.NoError(t, InitDir(projectDir))

	custom := []byte("version: 1\nsim:\n  grab_hook_misses: 3\n")
	require.NoError(t, os.WriteFile(Path(projectDir), custom, 0o644))
	require.NoError(t, InitDir(projectDir))

	cfg, err := Load(Path(projectDir))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Sim.GrabHookMisses)

	info, err := os.Stat(LogPath(projectDir))
	assert.True(t, os.IsNotExist(err), "log file is created by the logger, not InitDir: %v", info)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("heights: [1, 2"))
	assert.Error(t, err)
}
