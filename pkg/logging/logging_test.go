package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for raw, want := range tests {
		if got := ParseLevel(raw); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestNewHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")
	log.Info("hidden")
	log.Warn("shown", "id", "t1")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "id=t1") {
		t.Fatalf("output = %q", out)
	}
}

func TestOpenAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "planner.log")
	log, closer, err := Open(path, "info")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	log.Info("hello")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), "msg=hello") {
		t.Fatalf("log = %q", raw)
	}
}
