package shared

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Run("with nil writer", func(t *testing.T) {
		logger := NewLogger(nil)
		if logger == nil {
			t.Fatal("expected logger to be created")
		}
	})

	t.Run("with custom writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello")
		if buf.Len() == 0 {
			t.Error("expected log output in buffer")
		}
	})
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "euphony.log")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create file logger: %v", err)
	}
	logger.Info("hello")

	if _, err := filepath.Glob(path); err != nil {
		t.Errorf("expected log file at %s: %v", path, err)
	}
}

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == "" || b == "" {
		t.Error("expected non-empty IDs")
	}
	if a == b {
		t.Error("expected unique IDs")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{60, "1:00"},
		{191.4, "3:11"},
		{3600, "60:00"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestAcquireLock(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "euphony.db")

	lock, err := AcquireLock(dbPath)
	if err != nil {
		t.Fatalf("failed to acquire lock: %v", err)
	}

	if _, err := AcquireLock(dbPath); err != ErrLocked {
		t.Errorf("expected ErrLocked on second acquire, got %v", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("failed to release lock: %v", err)
	}

	lock2, err := AcquireLock(dbPath)
	if err != nil {
		t.Errorf("expected to re-acquire after release, got %v", err)
	} else {
		lock2.Release()
	}
}
