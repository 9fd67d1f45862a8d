// Package logger provides a structured, levelled logger built on log/slog.
//
// Components take a child logger tagged with their name so every line can be
// traced back to the part of the inventory that wrote it:
//
//	log := logger.With("store")
//	log.Debug("product inserted", "id", 7)
//	// → time=... level=DEBUG msg="product inserted" component=store id=7
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/shashiranjanraj/inventory/config"
)

var L *slog.Logger

func init() {
	cfg := config.Get()
	L = New(os.Stdout, cfg.IsProduction(), cfg.Log.Level)
	slog.SetDefault(L)
}

// New builds a logger writing to w. Production uses JSON for log
// aggregators; everything else gets the human-readable text handler.
func New(w io.Writer, production bool, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if production {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a config string to a slog level. Unknown values fall back to
// info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// With returns the base logger tagged with a component name.
func With(component string) *slog.Logger {
	return L.With("component", component)
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ─────────────────────────────────────────────
// Short-hand helpers (use base logger)
// ─────────────────────────────────────────────

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
