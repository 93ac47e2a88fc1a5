// Package logger provides structured logging for the test helpers.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/anvil8/go-test-tools/config"
)

// Setup creates a structured JSON logger with the configured level,
// sets it as the process default, and returns it. An invalid level
// falls back to info with a warning rather than failing, so a typo in
// configuration never blocks a test run.
func Setup(cfg config.LoggingConfig) *slog.Logger {
	return setup(cfg, os.Stdout)
}

func setup(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
		tmp := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmp.Warn("invalid log level configured, using default level",
			"configured_level", cfg.Level,
			"default_level", "info")
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
