package logging

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRotatingWriter_Rotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raks.log")
	w, err := NewRotatingWriter(path, 64)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer w.Close()

	line := []byte(strings.Repeat("x", 40) + "\n")
	for i := 0; i < 3; i++ {
		if _, err := w.Write(line); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Fatalf("expected backup file: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() >= 64 {
		t.Fatalf("expected current log to be below the cap, got %d bytes", info.Size())
	}
}

func TestNewRotatingWriter_TruncatesOversized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raks.log")
	if err := os.WriteFile(path, bytes.Repeat([]byte("y"), 200), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	w, err := NewRotatingWriter(path, 100)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer w.Close()

	info, _ := os.Stat(path)
	if info.Size() != 0 {
		t.Fatalf("expected oversized log to be truncated, got %d bytes", info.Size())
	}
}

func TestDebugf_Level(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(prev)
	defer SetLevel("info")

	SetLevel("info")
	if DebugEnabled() {
		t.Fatalf("debug reported enabled at info level")
	}
	Debugf("hidden %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("debug output at info level: %q", buf.String())
	}

	SetLevel("DEBUG")
	if !DebugEnabled() {
		t.Fatalf("debug reported disabled at debug level")
	}
	Debugf("shown %d", 2)
	if !strings.Contains(buf.String(), "DEBUG: shown 2") {
		t.Fatalf("expected debug line, got %q", buf.String())
	}
}
