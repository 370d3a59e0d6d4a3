package core

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	lvl, err := ParseLogLevel(" WARN ")
	require.NoError(t, err)
	assert.Equal(t, WarnLevel, lvl)

	_, err = ParseLogLevel("verbose")
	assert.Error(t, err)
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv(LogLevelEnv, "error")
	assert.Equal(t, ErrorLevel, levelFromEnv(InfoLevel))

	t.Setenv(LogLevelEnv, "nonsense")
	assert.Equal(t, InfoLevel, levelFromEnv(InfoLevel))

	t.Setenv(LogLevelEnv, "")
	assert.Equal(t, DebugLevel, levelFromEnv(DebugLevel))
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	prev := LogGetLevel()
	LogSetOutput(&buf)
	t.Cleanup(func() {
		LogSetLevel(prev)
		LogSetOutput(os.Stderr)
	})

	LogSetLevel(WarnLevel)
	LogInfo("hidden %d", 1)
	LogWarn("shown %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden 1")
	assert.Contains(t, out, "shown 2")
}
