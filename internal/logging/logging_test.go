package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/gallery/internal/logtail"
)

func TestNew_WritesJSONLinesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "gallery.log")

	logger, closer, err := New(Options{Level: "info", Path: path})
	require.NoError(t, err)

	logger.Info("page loaded", "key", "images", "items", 6)
	logger.Debug("hidden")
	require.NoError(t, closer.Close())

	lines, err := logtail.Read(path, 10)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	entry := logtail.Parse(lines[0])
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "page loaded", entry.Message)
	assert.Equal(t, "images", entry.Fields["key"])
	assert.False(t, entry.Time.IsZero())
}

func TestNew_FansOutToConsoleAndExtraHandlers(t *testing.T) {
	var console bytes.Buffer
	var extra bytes.Buffer

	logger, closer, err := New(Options{
		Level:    "debug",
		Console:  &console,
		Handlers: []slog.Handler{slog.NewTextHandler(&extra, &slog.HandlerOptions{Level: slog.LevelDebug})},
	})
	require.NoError(t, err)
	defer closer.Close()

	logger.Debug("revalidate", "key", "images")

	assert.Contains(t, console.String(), "revalidate")
	assert.Contains(t, extra.String(), "msg=revalidate")
}

func TestNew_NoSinksDiscards(t *testing.T) {
	logger, closer, err := New(Options{})
	require.NoError(t, err)
	require.NotNil(t, closer)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, closer, err := New(Options{Level: "chatty"})
	require.Error(t, err)
	assert.NotNil(t, closer)
	assert.Contains(t, err.Error(), "chatty")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for name, want := range tests {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestNew_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gallery.log")
	require.NoError(t, os.WriteFile(path, []byte("previous line\n"), 0o644))

	logger, closer, err := New(Options{Path: path})
	require.NoError(t, err)
	logger.Warn("upload retried")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "previous line", lines[0])
	assert.Equal(t, "WARN", logtail.Parse(lines[1]).Level)
}
