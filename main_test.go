package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/segfault/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFlags(t *testing.T, args ...string) (*core.Configuration, error) {
	t.Helper()
	t.Setenv(core.ConfigPathEnv, "")

	cmd, f := newRootCmd()
	require.NoError(t, cmd.ParseFlags(args))
	return loadConfiguration(cmd, f)
}

func TestLoadConfigurationDefaults(t *testing.T) {
	cfg, err := parseFlags(t)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultConfiguration(), cfg)
}

func TestLoadConfigurationFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segfault.toml")
	doc := "[window]\ntitle = \"from-file\"\nwidth = 320\n\n[renderer]\nqueue_policy = \"split\"\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := parseFlags(t, "--config", path, "--width", "1920", "--validation", "--log-level", "debug")
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Window.Title, "unset flags keep file values")
	assert.Equal(t, uint32(1920), cfg.Window.Width)
	assert.Equal(t, core.QueuePolicySplit, cfg.Renderer.QueuePolicy)
	assert.True(t, cfg.Renderer.Validation)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigurationRejectsBadFlags(t *testing.T) {
	_, err := parseFlags(t, "--queue-policy", "round-robin")
	require.Error(t, err)
	assert.Equal(t, core.KindConfig, core.KindOf(err))

	_, err = parseFlags(t, "--depth-format", "d24")
	assert.Equal(t, core.KindConfig, core.KindOf(err))
}
