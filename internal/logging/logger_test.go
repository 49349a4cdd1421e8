package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "hookclimb.log")
	log, err := New(Options{Path: path})
	require.NoError(t, err)

	log.Named("scheduler").Infow("command finished", "command", "climb")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := string(data)
	assert.True(t, strings.Contains(line, `"msg":"command finished"`), line)
	assert.True(t, strings.Contains(line, `"command":"climb"`), line)
	assert.True(t, strings.Contains(line, "scheduler"), line)
}

func TestNopAndNilAreSafe(t *testing.T) {
	Nop().Infow("ignored")
	var nilLogger *Logger
	assert.NotNil(t, nilLogger.Named("x"))
	assert.NoError(t, nilLogger.Close())
}
