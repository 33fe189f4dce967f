package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"device-configurator/internal/config"
)

func TestParseLevel(t *testing.T) {
	level, err := parseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, level)

	_, err = parseLevel("loud")
	assert.Error(t, err)
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := NewLogger(&config.LoggingConfig{Level: "debug", Format: "json", Output: path, MaxSize: 1})
	require.NoError(t, err)

	NewDeviceLogger(logger, "/dev/ttyUSB0").LogCommand("cha 76", true, nil)
	assert.NoError(t, CloseLogger(logger))
	assert.FileExists(t, path)
}
