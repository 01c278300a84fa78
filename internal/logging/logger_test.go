package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesToConfiguredFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "membank.log")
	logger, err := NewLogger(Config{Level: INFO, OutputFile: logFile, JSONFormat: true})
	require.NoError(t, err)
	defer logger.Close()

	logger.Info("hello", "key", "value")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello")
}

func TestNewLoggerDefaultsMaxSizeAndBackups(t *testing.T) {
	logger, err := NewLogger(Config{Level: INFO})
	require.NoError(t, err)
	defer logger.Close()

	require.Equal(t, int64(10*1024*1024), logger.config.MaxSize)
	require.Equal(t, 3, logger.config.MaxBackups)
}

func TestRotateIfNeededRotatesOversizedFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "membank.log")
	require.NoError(t, os.WriteFile(logFile, make([]byte, 100), 0644))

	logger := &Logger{config: Config{OutputFile: logFile, MaxSize: 10, MaxBackups: 3}}
	require.NoError(t, logger.rotateIfNeeded())

	_, err := os.Stat(logFile)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(logFile + ".1")
	require.NoError(t, err)
}

func TestRotateIfNeededLeavesSmallFileInPlace(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "membank.log")
	require.NoError(t, os.WriteFile(logFile, make([]byte, 5), 0644))

	logger := &Logger{config: Config{OutputFile: logFile, MaxSize: 1000, MaxBackups: 3}}
	require.NoError(t, logger.rotateIfNeeded())

	_, err := os.Stat(logFile)
	require.NoError(t, err)
	_, err = os.Stat(logFile + ".1")
	require.True(t, os.IsNotExist(err))
}

func TestDefaultConfigTogglesFormatAndSourceByDebugMode(t *testing.T) {
	debug := DefaultConfig(true)
	require.Equal(t, DEBUG, debug.Level)
	require.False(t, debug.JSONFormat)
	require.True(t, debug.AddSource)

	prod := DefaultConfig(false)
	require.Equal(t, INFO, prod.Level)
	require.True(t, prod.JSONFormat)
	require.False(t, prod.AddSource)
}

func TestWithReturnsIndependentLoggerContext(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "membank.log")
	base, err := NewLogger(Config{Level: INFO, OutputFile: logFile, JSONFormat: true})
	require.NoError(t, err)
	defer base.Close()

	scoped := base.With("component", "test")
	scoped.Info("scoped message")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	require.Contains(t, string(data), `"component":"test"`)
}
