package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "envask.log")

	logger, err := New("info", path)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("Answer received", zap.Uint64("seq", 3))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"Answer received"`)
	assert.Contains(t, string(data), `"seq":3`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNewEmptyOutputIsNop(t *testing.T) {
	logger, err := New("info", "")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.ErrorLevel))
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New("chatty", "stderr")
	assert.Error(t, err)
}
