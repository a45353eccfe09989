// Package logging builds the *slog.Logger shared by the gallery packages.
//
// Records are written as zerolog JSON lines to the configured file, which is
// the format the logtail package reads back. CLI commands may also fan the
// same records out to a console writer on stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	slogmulti "github.com/samber/slog-multi"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

// Options controls logger construction.
type Options struct {
	Level   string
	Path    string
	Console io.Writer
	// Handlers are appended to the fanout, mostly for tests.
	Handlers []slog.Handler
}

// New returns a logger plus a closer for the underlying file. The closer is
// never nil.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nopCloser{}, err
	}

	var (
		handlers []slog.Handler
		closer   io.Closer = nopCloser{}
	)

	if path := strings.TrimSpace(opts.Path); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, closer, fmt.Errorf("create log dir: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, closer, fmt.Errorf("open log file: %w", err)
		}
		closer = file
		handlers = append(handlers, zerologHandler(file, level))
	}

	if opts.Console != nil {
		console := zerolog.ConsoleWriter{Out: opts.Console, TimeFormat: time.Kitchen}
		handlers = append(handlers, zerologHandler(console, level))
	}

	handlers = append(handlers, opts.Handlers...)

	if len(handlers) == 0 {
		return Discard(), closer, nil
	}
	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps a config level name to a slog level. Empty means info.
func ParseLevel(name string) (slog.Level, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", name, err)
	}
	return level, nil
}

func zerologHandler(w io.Writer, level slog.Level) slog.Handler {
	zl := zerolog.New(w)
	return slogzerolog.Option{Level: level, Logger: &zl}.NewZerologHandler()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
