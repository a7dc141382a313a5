// Package log provides structured logging for go-emotion.
// It wraps slog with the defaults used by every command.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu     sync.RWMutex
	logger *slog.Logger
)

// ParseLevel maps a level name to a slog level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init configures the global logger. Output goes to stderr so that commands
// printing results to stdout stay pipeable.
// JSON is used when GO_ENV=production, text otherwise.
func Init(level string) *slog.Logger {
	return InitWriter(os.Stderr, level)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var l *slog.Logger
	if os.Getenv("GO_ENV") == "production" {
		l = slog.New(slog.NewJSONHandler(w, opts))
	} else {
		l = slog.New(slog.NewTextHandler(w, opts))
	}

	mu.Lock()
	logger = l
	mu.Unlock()

	slog.SetDefault(l)
	return l
}

// L returns the global logger instance.
func L() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l == nil {
		return Init("info")
	}
	return l
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	L().Error(msg, args...)
}
