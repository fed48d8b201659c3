package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jwebster45206/piously-console/internal/config"
)

// Setup opens cfg.LogFile and installs a logger writing to it as the slog
// default. The terminal belongs to the UI, so nothing is logged to stdout.
// The returned func closes the file.
func Setup(cfg *config.Config) (*slog.Logger, func() error, error) {
	if dir := filepath.Dir(cfg.LogFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	log := New(f, cfg.Environment, cfg.LogLevel)
	slog.SetDefault(log)
	return log, f.Close, nil
}

// New builds a logger for w: JSON in production, text elsewhere.
func New(w io.Writer, environment string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if environment == "production" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func WithRequestID(logger *slog.Logger, requestID string) *slog.Logger {
	return logger.With("request_id", requestID)
}

// WithGameID tags entries with the session they belong to.
func WithGameID(logger *slog.Logger, gameID string) *slog.Logger {
	return logger.With("game_id", gameID)
}

func WithError(logger *slog.Logger, err error) *slog.Logger {
	return logger.With("error", err.Error())
}
