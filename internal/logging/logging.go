// Package logging builds the application logger. The terminal belongs to the
// UI while it runs, so records go to a file and optionally to stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"

	"github.com/jask/mdtabs/internal/config"
)

// ParseLevel maps a config level name to a slog level. Unknown names are info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// New opens the log file named in cfg and returns a logger fanned out to
// every configured sink. The returned closer releases the file.
func New(cfg config.LogConfig) (*slog.Logger, io.Closer, error) {
	var sinks []io.Writer
	var closer io.Closer = nopCloser{}
	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("mkdir log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log: %w", err)
		}
		sinks = append(sinks, f)
		closer = f
	}
	if cfg.Stderr {
		sinks = append(sinks, os.Stderr)
	}
	return NewWithWriters(ParseLevel(cfg.Level), sinks...), closer, nil
}

// Open is New for callers that must carry on without a log file. When the
// file cannot be opened the logger writes to stderr if cfg asks for it and
// discards otherwise. The error says why the file was not used.
func Open(cfg config.LogConfig) (*slog.Logger, io.Closer, error) {
	logger, closer, err := New(cfg)
	if err == nil {
		return logger, closer, nil
	}
	var sinks []io.Writer
	if cfg.Stderr {
		sinks = append(sinks, os.Stderr)
	}
	return NewWithWriters(ParseLevel(cfg.Level), sinks...), nopCloser{}, err
}

// NewWithWriters returns a logger writing text records at level to each w.
func NewWithWriters(level slog.Leveler, ws ...io.Writer) *slog.Logger {
	handlers := make([]slog.Handler, 0, len(ws))
	for _, w := range ws {
		handlers = append(handlers, slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	}
	if len(handlers) == 0 {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slogmulti.Fanout(handlers...))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
