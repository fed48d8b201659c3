package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/piously-console/internal/config"
)

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "production", slog.LevelInfo)
	WithGameID(log, "abc123").Info("Polling game state", "tick", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Polling game state", entry["msg"])
	assert.Equal(t, "abc123", entry["game_id"])
	assert.EqualValues(t, 3, entry["tick"])
}

func TestNew_DevelopmentWritesText(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "development", slog.LevelInfo)
	WithError(WithRequestID(log, "req-1"), errors.New("boom")).Warn("Action failed")

	out := buf.String()
	assert.Contains(t, out, "msg=\"Action failed\"")
	assert.Contains(t, out, "request_id=req-1")
	assert.Contains(t, out, "error=boom")
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "development", slog.LevelWarn)
	log.Info("hidden")
	log.Debug("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetup_WritesToLogFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "logs", "console.log")
	cfg := &config.Config{Environment: "development", LogLevel: slog.LevelInfo, LogFile: path}

	log, closeFn, err := Setup(cfg)
	require.NoError(t, err)
	log.Info("Starting piously console")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Starting piously console")
}

func TestSetup_BadPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	cfg := &config.Config{LogFile: filepath.Join(blocker, "console.log")}
	_, _, err := Setup(cfg)
	require.Error(t, err)
}
