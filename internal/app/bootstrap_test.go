package app

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/five82/gallery/internal/gallery"
)

func slogDiscard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestBootstrap_WiresServicesFromConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfgPath := filepath.Join(home, "config.toml")
	logPath := filepath.Join(home, "state", "gallery.log")
	contents := "api_bind = \"127.0.0.1:4567\"\n" +
		"log_file = \"" + logPath + "\"\n" +
		"[limits]\ntitle_max = 40\n"
	if err := os.WriteFile(cfgPath, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	svc, err := Bootstrap(Options{ConfigPath: cfgPath, PrefsPath: filepath.Join(home, "prefs.toml")})
	if err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	defer svc.Close()

	if got := svc.Client.BaseURL(); got != "http://127.0.0.1:4567" {
		t.Fatalf("BaseURL = %q, want %q", got, "http://127.0.0.1:4567")
	}
	if got := svc.Submitter.Rules().TitleMax; got != 40 {
		t.Fatalf("TitleMax = %d, want 40", got)
	}
	keys := svc.Paginator.Keys()
	if len(keys) != 1 || keys[0] != gallery.ImagesKey {
		t.Fatalf("Keys = %v, want [%s]", keys, gallery.ImagesKey)
	}
	if _, err := os.Stat(logPath); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
}

func TestBootstrap_RejectsBadUploadEndpoint(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfgPath := filepath.Join(home, "config.toml")
	contents := "upload_endpoint = \"not a url\"\nlog_file = \"" + filepath.Join(home, "g.log") + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Bootstrap(Options{ConfigPath: cfgPath}); err == nil {
		t.Fatalf("Bootstrap returned nil error, want upload endpoint error")
	}
}

func TestServicesClose_NilSafe(t *testing.T) {
	var svc *Services
	if err := svc.Close(); err != nil {
		t.Fatalf("Close on nil = %v, want nil", err)
	}
}
