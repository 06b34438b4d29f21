package logs

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// ConsoleLogger installs a tinted stderr handler as the default slog logger
// and returns it.
func ConsoleLogger() *slog.Logger {
	return ConsoleLoggerWithLevel("info")
}

// ConsoleLoggerWithLevel is ConsoleLogger with an explicit minimum level
// (debug, info, warn, error). "none" silences everything.
func ConsoleLoggerWithLevel(level string) *slog.Logger {
	w := os.Stderr

	logger := slog.New(tint.NewHandler(w, &tint.Options{
		Level:      parseLevel(level),
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none":
		// Above every level slog emits.
		return slog.Level(128)
	default:
		return slog.LevelInfo
	}
}
