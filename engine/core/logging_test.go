package core

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLoggingFansOutToConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	file := filepath.Join(t.TempDir(), "logs", "renderer.log")

	if err := SetupLogging(LogOptions{Level: log.DebugLevel, Console: &console, File: file}); err != nil {
		t.Fatalf("SetupLogging() error = %v", err)
	}
	LogInfo("hello %s", "world")
	if err := ShutdownLogging(); err != nil {
		t.Fatalf("ShutdownLogging() error = %v", err)
	}

	if !strings.Contains(console.String(), "hello world") {
		t.Errorf("console output %q does not contain the message", console.String())
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "hello world") {
		t.Errorf("file output %q does not contain the message", data)
	}
}

func TestLoggingRespectsLevel(t *testing.T) {
	var console bytes.Buffer
	if err := SetupLogging(LogOptions{Level: log.WarnLevel, Console: &console}); err != nil {
		t.Fatalf("SetupLogging() error = %v", err)
	}
	defer ShutdownLogging()

	LogDebug("quiet")
	LogWarn("loud")

	out := console.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("debug message leaked through warn level: %q", out)
	}
	if !strings.Contains(out, "loud") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestShutdownLoggingIsIdempotent(t *testing.T) {
	if err := SetupLogging(LogOptions{Console: &bytes.Buffer{}}); err != nil {
		t.Fatalf("SetupLogging() error = %v", err)
	}
	if err := ShutdownLogging(); err != nil {
		t.Fatalf("first ShutdownLogging() error = %v", err)
	}
	if err := ShutdownLogging(); err != nil {
		t.Fatalf("second ShutdownLogging() error = %v", err)
	}
	// falls back to stderr without panicking
	LogDebug("after shutdown")
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() on existing dir error = %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected %s to be a directory, err = %v", dir, err)
	}
}

func TestEnsureDirOnFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDir(path); err == nil {
		t.Fatal("EnsureDir() on a regular file should fail")
	}
}
