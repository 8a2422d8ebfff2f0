package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// SetupLogging installs the default slog logger described by c and returns
// a func that releases the log file, if any. Without a file the logger
// writes to fallback.
func SetupLogging(c LoggingConfig, fallback io.Writer) (func() error, error) {
	var slogLevel slog.Level
	switch c.Level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info", "":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", c.Level)
	}

	out := fallback
	closer := func() error { return nil }
	if c.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closer = f.Close
	}

	opts := &slog.HandlerOptions{Level: slogLevel}

	var handler slog.Handler
	switch c.Format {
	case "console", "text", "":
		handler = slog.NewTextHandler(out, opts)
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	default:
		closer()
		return nil, fmt.Errorf("invalid log format: %s", c.Format)
	}

	slog.SetDefault(slog.New(handler))
	return closer, nil
}

// DefaultLogFile is where the terminal UI logs when logging.file is unset,
// since stderr belongs to the alternate screen
func DefaultLogFile() string {
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, "geolog", "geolog.log")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "geolog.log")
	}
	return filepath.Join(home, ".local", "state", "geolog", "geolog.log")
}
