package locker

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	lk := New(Options{})

	if err := lk.Write(src, "payload"); err != nil {
		t.Fatal(err)
	}
	if err := lk.Copy(src, dst); err != nil {
		t.Fatalf("Copy: %v", err)
	}

	for _, p := range []string{src, dst} {
		got, err := lk.ReadString(p)
		if err != nil || got != "payload" {
			t.Fatalf("%s = %q, %v", p, got, err)
		}
	}
	if held := lk.Locked(); len(held) != 0 {
		t.Fatalf("Copy leaked locks: %v", held)
	}
}

func TestMove(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	lk := New(Options{})

	if err := lk.Write(src, "payload"); err != nil {
		t.Fatal(err)
	}
	if err := lk.Move(src, dst); err != nil {
		t.Fatalf("Move: %v", err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("source survived Move")
	}
	got, err := lk.ReadString(dst)
	if err != nil || got != "payload" {
		t.Fatalf("dst = %q, %v", got, err)
	}
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	lk := New(Options{})

	if err := lk.Write(path, "payload"); err != nil {
		t.Fatal(err)
	}
	if err := lk.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("file survived Remove")
	}
	if held := lk.Locked(); len(held) != 0 {
		t.Fatalf("Remove leaked locks: %v", held)
	}
}
