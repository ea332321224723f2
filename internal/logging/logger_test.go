package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesFileAndConsole(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	logger, err := New(dir, false, &console)
	require.NoError(t, err)

	logger.Debug("hidden detail")
	logger.Info("samples registered", "signal", 3)
	require.NoError(t, logger.Close())

	assert.Equal(t, filepath.Join(dir, "logs", FileName), logger.Path())
	data, err := os.ReadFile(logger.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "samples registered")
	assert.Contains(t, string(data), "signal=3")
	assert.NotContains(t, string(data), "hidden detail")
	assert.Equal(t, string(data), console.String())
}

func TestVerboseEnablesDebug(t *testing.T) {
	logger, err := New(t.TempDir(), true, nil)
	require.NoError(t, err)
	defer logger.Close()
	logger.Debug("glob pattern", "pattern", "/data/*/ElElEl/x")

	data, err := os.ReadFile(logger.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "level=DEBUG")
	assert.Equal(t, slog.LevelInfo, Level(false))
}

func TestNilLogger(t *testing.T) {
	var l *Logger
	assert.NoError(t, l.Close())
	assert.Empty(t, l.Path())
}
