package logging

import (
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func restoreDefaults(t *testing.T) {
	t.Helper()
	orig := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(orig)
		log.SetOutput(os.Stderr)
	})
}

func TestInitWritesToFile(t *testing.T) {
	restoreDefaults(t)

	path := filepath.Join(t.TempDir(), "logs", "lista.log")
	if err := Init(path); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	slog.Info("hello from the test", "key", "value")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from the test") {
		t.Errorf("log file missing the message, got: %s", data)
	}
	if !strings.Contains(string(data), "key=value") {
		t.Errorf("log file missing the attribute, got: %s", data)
	}
}

func TestInitAppends(t *testing.T) {
	restoreDefaults(t)

	path := filepath.Join(t.TempDir(), "lista.log")
	if err := Init(path); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	slog.Info("first run")

	if err := Init(path); err != nil {
		t.Fatalf("Init() failed on reopen: %v", err)
	}
	slog.Info("second run")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "first run") || !strings.Contains(string(data), "second run") {
		t.Errorf("reopened log should keep earlier lines, got: %s", data)
	}
}

func TestInitEmptyPathKeepsStderr(t *testing.T) {
	restoreDefaults(t)

	if err := Init(""); err != nil {
		t.Fatalf("Init(\"\") failed: %v", err)
	}
	if Logger == nil {
		t.Fatal("Logger should be set")
	}
}
