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
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record written at warn level: %q", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "key=value") {
		t.Fatalf("warn record missing: %q", out)
	}
}

func TestOpenFile_CreatesDirsAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "vinted.log")

	for i := 0; i < 2; i++ {
		logger, f, err := OpenFile(path, "info")
		if err != nil {
			t.Fatalf("OpenFile returned error: %v", err)
		}
		logger.Info("started")
		if err := f.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := strings.Count(string(data), "msg=started"); got != 2 {
		t.Fatalf("log has %d records, want 2:\n%s", got, data)
	}
}
