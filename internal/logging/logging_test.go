package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLogger(t *testing.T) {
	logger := NewLogger("test-component")
	if logger == nil {
		t.Fatal("Expected logger to be created")
	}
	if logger.Data["component"] != "test-component" {
		t.Errorf("Expected component to be 'test-component', got %v", logger.Data["component"])
	}
}

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "podtail.log")
	if err := Setup(Options{Level: "debug", File: path}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer Close()

	NewLogger("session").Debug("dropped frame")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "dropped frame") || !strings.Contains(out, "component=session") {
		t.Errorf("unexpected log output: %s", out)
	}
}

func TestSetupInvalidLevelFallsBackToInfo(t *testing.T) {
	if err := Setup(Options{Level: "loud"}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer Close()
	if got := NewLogger("x").Logger.GetLevel(); got != logrus.InfoLevel {
		t.Errorf("level = %v, want info", got)
	}
}
