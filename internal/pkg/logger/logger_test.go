package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photoshare/internal/config"
)

func TestNewWritesJSONToConfiguredPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New(config.LogConfig{Level: "debug", OutputPaths: []string{path}})
	require.NoError(t, err)

	log.Debug("sweep finished")
	Sync(log)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"sweep finished"`)
	assert.Contains(t, string(data), `"level":"DEBUG"`)
}

func TestNewFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New(config.LogConfig{Level: "chatty", OutputPaths: []string{path}})
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(-1), "debug must be disabled")
	assert.True(t, log.Core().Enabled(0), "info must be enabled")
}
