package observability

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"treeterm/internal/config"
)

func TestGetLoggerBeforeInitialize(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := GetLogger()
	require.NotNil(t, logger)
	logger.Info("dropped")
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel), "fallback is a no-op")
}

func TestFileLoggerWritesJSON(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	path := filepath.Join(t.TempDir(), "treeterm.log")
	Initialize(config.LoggerConfig{
		Level:       "debug",
		ServiceName: "treeterm",
		LogFile:     path,
		MaxSize:     1,
	}, nil)

	GetLogger().Named("engine").Debug("node created", zap.String("id", "n1"))
	Sync()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())
	var entry map[string]any
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "treeterm.engine", entry["logger"])
	assert.Equal(t, "node created", entry["msg"])
	assert.Equal(t, "n1", entry["id"])
}

func TestConsoleCoreIsOptIn(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	Initialize(config.LoggerConfig{Level: "info", Format: "console"}, zapcore.AddSync(&buf))
	GetLogger().Info("hidden")
	Sync()
	assert.Empty(t, buf.String())

	ResetForTest()
	Initialize(config.LoggerConfig{Level: "info", Format: "console", Console: true}, zapcore.AddSync(&buf))
	GetLogger().Info("shown")
	Sync()
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "INFO")
}

func TestInitializeRunsOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var first, second bytes.Buffer
	Initialize(config.LoggerConfig{Level: "info", Console: true}, zapcore.AddSync(&first))
	Initialize(config.LoggerConfig{Level: "info", Console: true}, zapcore.AddSync(&second))
	GetLogger().Info("once")
	Sync()
	assert.Contains(t, first.String(), "once")
	assert.Empty(t, second.String())
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	Initialize(config.LoggerConfig{Level: "loud", Console: true}, zapcore.AddSync(&buf))
	GetLogger().Debug("quiet")
	GetLogger().Info("heard")
	Sync()
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "heard")
}
