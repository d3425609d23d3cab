package locker

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestReentrancy(t *testing.T) {
	lk := New(Options{})
	path := filepath.Join(t.TempDir(), "a.lock")

	for i := 0; i < 2; i++ {
		ok, err := lk.TryLock(path)
		if err != nil {
			t.Fatalf("TryLock %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("TryLock %d = false, want true", i)
		}
	}

	if err := lk.Unlock(path); err != nil {
		t.Fatalf("first Unlock: %v", err)
	}
	if !lk.IsLocked(path) {
		t.Fatal("still one hold outstanding, IsLocked = false")
	}

	if err := lk.Unlock(path); err != nil {
		t.Fatalf("second Unlock: %v", err)
	}
	if lk.IsLocked(path) {
		t.Fatal("all holds released, IsLocked = true")
	}
}

func TestIdentityCollapse(t *testing.T) {
	chdir(t, t.TempDir())

	lk := New(Options{})
	if ok, err := lk.TryLock("./a.lock"); err != nil || !ok {
		t.Fatalf("TryLock ./a.lock = %v, %v", ok, err)
	}
	if ok, err := lk.TryLock("a.lock"); err != nil || !ok {
		t.Fatalf("reentrant TryLock a.lock = %v, %v", ok, err)
	}
	if held := lk.Locked(); len(held) != 1 {
		t.Fatalf("Locked() = %v, want one entry for both spellings", held)
	}

	// A second locker stands in for a second process: flock conflicts
	// between separate descriptors even inside one process.
	other := New(Options{})
	if ok, err := other.TryLock("a.lock"); err != nil {
		t.Fatalf("other TryLock: %v", err)
	} else if ok {
		t.Fatal("other locker acquired an already-locked identity")
	}

	lk.Unlock("a.lock")
	lk.Unlock("./a.lock")
}

func TestBlockingAcquisition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.lock")
	holder := New(Options{})
	waiter := New(Options{})

	if err := holder.Lock(path); err != nil {
		t.Fatalf("holder Lock: %v", err)
	}

	done := make(chan struct{})
	go func() {
		if err := waiter.Lock(path); err != nil {
			t.Errorf("waiter Lock: %v", err)
		}
		waiter.Unlock(path)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("waiter acquired the lock while holder held it")
	case <-time.After(100 * time.Millisecond):
		// Expected: waiter is polling.
	}

	if err := holder.Unlock(path); err != nil {
		t.Fatalf("holder Unlock: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never acquired the lock after release")
	}
}

func TestBatchRollback(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.lock")
	b := filepath.Join(dir, "b.lock")
	c := filepath.Join(dir, "c.lock")

	other := New(Options{})
	if ok, _ := other.TryLock(b); !ok {
		t.Fatal("setup: other failed to lock b")
	}

	lk := New(Options{})
	ok, err := lk.TryLock(a, b, c)
	if err != nil {
		t.Fatalf("TryLock batch: %v", err)
	}
	if ok {
		t.Fatal("batch TryLock succeeded with b held elsewhere")
	}

	// a and c must have been rolled back, not just b refused.
	for _, p := range []string{a, c} {
		if ok, err := other.TryLock(p); err != nil || !ok {
			t.Fatalf("%s still locked after rollback: %v, %v", p, ok, err)
		}
	}
	other.Unlock(a, b, c)
}

func TestUnlockReverseOrder(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.lock")
	b := filepath.Join(dir, "b.lock")

	lk := New(Options{})
	if err := lk.Lock(a, b); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if err := lk.Unlock(a, b); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	for _, p := range []string{a, b} {
		if lk.IsLocked(p) {
			t.Fatalf("%s still locked after batch unlock", p)
		}
	}
}

func TestEmptyLockfileCleanup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.lock")
	lk := New(Options{})

	if err := lk.Lock(path); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("lockfile not created: %v", err)
	}
	if err := lk.Unlock(path); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("empty lockfile survived release")
	}

	// Non-empty lockfiles persist with their content.
	if err := lk.Lock(path); err != nil {
		t.Fatalf("relock: %v", err)
	}
	if err := os.WriteFile(path, []byte("state"), 0o666); err != nil {
		t.Fatal(err)
	}
	if err := lk.Unlock(path); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "state" {
		t.Fatalf("lockfile content = %q, %v, want \"state\"", data, err)
	}
}

func TestKeepEmptyOption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.lock")
	lk := New(Options{KeepEmpty: true})

	lk.Lock(path)
	if err := lk.Unlock(path); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("empty lockfile removed despite KeepEmpty: %v", err)
	}
}

func TestStrictUnlock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.lock")

	strict := New(Options{Strict: true})
	if err := strict.Lock(path); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	// The lockfile vanishing while "held" means the lock may be lost.
	os.Remove(path)
	if err := strict.Unlock(path); !errors.Is(err, ErrNotHeld) {
		t.Fatalf("strict Unlock after delete = %v, want ErrNotHeld", err)
	}
	strict.Clear()

	// Default policy treats the same situation as a no-op.
	lenient := New(Options{})
	lenient.Lock(path)
	os.Remove(path)
	if err := lenient.Unlock(path); err != nil {
		t.Fatalf("lenient Unlock after delete = %v, want nil", err)
	}
	lenient.Clear()
}

func TestLockedReportsCanonicalPaths(t *testing.T) {
	chdir(t, t.TempDir())

	lk := New(Options{})
	if err := lk.Lock("sub/dir/a.lock"); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer lk.Unlock("sub/dir/a.lock")

	held := lk.Locked()
	if len(held) != 1 {
		t.Fatalf("Locked() = %v, want one path", held)
	}
	if !filepath.IsAbs(held[0]) {
		t.Fatalf("Locked() path %q not canonical", held[0])
	}
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	lk := New(Options{})
	a := filepath.Join(dir, "a.lock")
	b := filepath.Join(dir, "b.lock")
	lk.Lock(a)
	lk.Lock(b)
	lk.Lock(b) // nested

	lk.Clear()
	if held := lk.Locked(); len(held) != 0 {
		t.Fatalf("Locked() after Clear = %v", held)
	}

	// The descriptors are gone, so another locker can acquire freely.
	other := New(Options{})
	if ok, err := other.TryLock(a); err != nil || !ok {
		t.Fatalf("TryLock after Clear = %v, %v", ok, err)
	}
	other.Unlock(a)
}

func TestLockEveryZeroSpins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.lock")
	holder := New(Options{})
	holder.Lock(path)

	done := make(chan error, 1)
	go func() {
		lk := New(Options{})
		err := lk.LockEvery(0, path)
		lk.Unlock(path)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	holder.Unlock(path)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("LockEvery(0): %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("spinning waiter never acquired the lock")
	}
}
