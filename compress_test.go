package locker

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPackedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot")
	lk := New(Options{})

	payload := []byte(strings.Repeat("ten bytes!", 1000))
	if err := lk.WritePacked(path, payload); err != nil {
		t.Fatalf("WritePacked: %v", err)
	}

	// Stored form is a zstd frame, smaller than the repetitive payload.
	stored, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) >= len(payload) {
		t.Fatalf("stored %d bytes, payload %d — not compressed", len(stored), len(payload))
	}

	out, err := lk.ReadPacked(path)
	if err != nil {
		t.Fatalf("ReadPacked: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatal("round trip mismatch")
	}
}

func TestReadPackedMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing")
	lk := New(Options{})
	out, err := lk.ReadPacked(path)
	if err != nil {
		t.Fatalf("ReadPacked: %v", err)
	}
	if out != nil {
		t.Fatalf("ReadPacked = %v, want nil", out)
	}
}
