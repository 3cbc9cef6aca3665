package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "consultly.log")
	logger, err := New("debug", file)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	logger.Debug("slot fetched")
	logger.Sync() //nolint:errcheck

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"slot fetched"`) {
		t.Errorf("log = %q, want JSON entry with msg", data)
	}
}

func TestNewUnknownLevelDefaultsToInfo(t *testing.T) {
	file := filepath.Join(t.TempDir(), "consultly.log")
	logger, err := New("verbose", file)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if logger.Core().Enabled(-1) {
		t.Error("debug should be disabled at the default info level")
	}
	if !logger.Core().Enabled(0) {
		t.Error("info should be enabled")
	}
}
