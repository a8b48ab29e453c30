package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "stretchy.log")
	log, err := New(path, true, false)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	log.Debug("cycle started")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"cycle started"`) {
		t.Fatalf("expected debug entry in log, got %s", data)
	}
}

func TestNewRejectsEmptyPath(t *testing.T) {
	if _, err := New("", false, false); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
