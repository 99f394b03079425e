package log

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmcdole/shelf/internal/config"
)

// maxLogSize is the size past which the previous log is rotated to
// <file>.1 on startup.
const maxLogSize = 4 << 20

// SetupLogger opens the configured log file and returns a JSON logger
// writing to it, plus a func closing the file. An empty file or an OFF
// level yields a discarding logger.
func SetupLogger(cfg *config.LoggingConfig) (*slog.Logger, func() error, error) {
	noop := func() error { return nil }
	if cfg.File == "" || strings.EqualFold(strings.TrimSpace(cfg.Level), "OFF") {
		return NullLogger(), noop, nil
	}

	logPath, err := config.ExpandPath(cfg.File)
	if err != nil {
		return nil, noop, err
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, noop, fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := rotate(logPath); err != nil {
		return nil, noop, err
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	})
	return slog.New(handler), logFile.Close, nil
}

// rotate moves an oversized log aside so one run never appends to a
// runaway file.
func rotate(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.Size() < maxLogSize {
		return nil
	}
	if err := os.Rename(path, path+".1"); err != nil {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}
	return nil
}

// ParseLevel converts a string log level to slog.Level
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NullLogger returns a logger that discards all output
func NullLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
