// Package logging provides the process-wide slog logger. Output always
// goes to stderr: stdout belongs to the MCP stdio transport.
package logging

import (
	"log/slog"
	"os"
)

var (
	logLevel = new(slog.LevelVar)
	logger   *slog.Logger
)

func init() {
	logLevel.Set(parseLevel(os.Getenv("CRAFTSTUDIO_DEBUG")))

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	logger = slog.New(handler)
}

// Logger returns the global logger instance.
func Logger() *slog.Logger {
	return logger
}

// SetLevel sets the global log level.
func SetLevel(level slog.Level) {
	logLevel.Set(level)
}

// parseLevel maps CRAFTSTUDIO_DEBUG values to slog levels.
// 0=Error, 1=Warn, 2=Info, 3=Debug; anything else defaults to Warn.
func parseLevel(envVal string) slog.Level {
	switch envVal {
	case "0":
		return slog.LevelError
	case "1":
		return slog.LevelWarn
	case "2":
		return slog.LevelInfo
	case "3":
		return slog.LevelDebug
	default:
		return slog.LevelWarn
	}
}
