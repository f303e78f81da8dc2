// Package logger provides structured logging for spares.
// The terminal belongs to the UI, so records go to a file or nowhere.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// New creates a logger writing to w. Debug mode uses the text handler at
// debug level; otherwise records are JSON at info level.
func New(w io.Writer, debug bool) *slog.Logger {
	if w == nil {
		w = io.Discard
	}

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	var handler slog.Handler
	if debug {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return New(io.Discard, false)
}

// OpenFile opens (appending) the log file at path and returns a logger plus a
// close function. An empty path yields a discarding logger.
func OpenFile(path string, debug bool) (*slog.Logger, func() error, error) {
	if path == "" {
		return Nop(), func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return New(f, debug), f.Close, nil
}

// Component returns a child logger tagged with the component name.
func Component(l *slog.Logger, name string) *slog.Logger {
	if l == nil {
		l = Nop()
	}
	return l.With(slog.String("component", name))
}
