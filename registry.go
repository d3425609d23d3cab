// Lock registry and the acquisition/release protocols.
//
// The registry is the identity-keyed table of every lock this process
// holds. Acquisition opens the path, consults the table for a reentrant
// hit, takes the kernel flock non-blocking, and then re-stats the path to
// verify the identity locked is still the identity opened — if the file
// was replaced in between, the whole protocol restarts. Release is the
// inverse: decrement, and on the last release fsync, unlink the lockfile
// if it is still linked and empty, close, unregister.
package locker

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// tryAcquire runs one pass of the acquisition protocol. Returns ok=false
// with a nil error when another holder has the kernel lock. The TOCTOU
// retry (path replaced between open and flock) is a normal-path loop, not
// an error.
func (lk *Locker) tryAcquire(path string) (identity, bool, error) {
	for {
		f, id, err := lk.resolve(path)
		if err != nil {
			return identity{}, false, err
		}

		lk.mu.Lock()
		if e, held := lk.held[id]; held {
			if e.pid == os.Getpid() {
				e.n++
				lk.mu.Unlock()
				f.Close() // duplicate descriptor, entry already owns one
				return id, true, nil
			}
			// Entry inherited from a parent process; its flock does not
			// bind us. Discard and acquire fresh.
			delete(lk.held, id)
		}

		locked, err := flockTry(int(f.Fd()))
		if err != nil {
			lk.mu.Unlock()
			f.Close()
			return identity{}, false, fmt.Errorf("%w: lock %q: %w", ErrIO, path, err)
		}
		if !locked {
			lk.mu.Unlock()
			f.Close()
			return identity{}, false, nil
		}

		if cur, ok := pathIdentity(path); ok && cur == id {
			lk.held[id] = &entry{f: f, n: 1, pid: os.Getpid()}
			lk.mu.Unlock()
			return id, true, nil
		}

		// The path was replaced between open and flock; what we locked is
		// no longer what the name denotes. Drop everything and start over.
		flockDrop(int(f.Fd()))
		lk.mu.Unlock()
		f.Close()
	}
}

// acquire blocks until the lock on path is held, retrying the non-blocking
// attempt every interval. An interval of zero spins. There is no timeout:
// callers needing one alternate TryLock with their own deadline.
func (lk *Locker) acquire(path string, interval time.Duration) (identity, error) {
	for {
		id, ok, err := lk.tryAcquire(path)
		if err != nil {
			return identity{}, err
		}
		if ok {
			return id, nil
		}
		if interval > 0 {
			time.Sleep(interval)
		}
	}
}

// release decrements the entry for id, and on reaching zero runs the
// teardown sequence and unregisters it. Releasing an identity that is not
// registered is a no-op, or ErrNotHeld under Options.Strict.
func (lk *Locker) release(id identity, keepEmpty bool) error {
	lk.mu.Lock()
	defer lk.mu.Unlock()
	e, held := lk.held[id]
	if !held {
		if lk.opts.Strict {
			return ErrNotHeld
		}
		return nil
	}
	if e.n--; e.n > 0 {
		return nil
	}
	delete(lk.held, id)
	return releaseEntry(e, keepEmpty)
}

// releaseEntry is the last-release teardown: fsync, conditional unlink of
// an empty lockfile, close. The unlink target is recovered from the
// descriptor, and re-checked against the descriptor's identity so that a
// file replaced after rename is never removed by mistake.
func releaseEntry(e *entry, keepEmpty bool) error {
	fd := int(e.f.Fd())

	id, _, statErr := fileIdentity(e.f)
	if statErr != nil {
		e.f.Close()
		return fmt.Errorf("%w: stat descriptor %d: %w", ErrIO, fd, statErr)
	}

	if err := e.f.Sync(); err != nil {
		e.f.Close()
		return fmt.Errorf("%w: fsync descriptor %d: %w", ErrIO, fd, err)
	}

	if !keepEmpty {
		if name, err := fdPath(fd); err == nil && name != "" {
			if cur, ok := pathIdentity(name); ok {
				size, serr := e.f.Seek(0, io.SeekEnd)
				if serr == nil && size == 0 && cur == id {
					if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
						e.f.Close()
						return fmt.Errorf("%w: unlink %q: %w", ErrIO, name, err)
					}
				}
			}
		}
	}

	if err := e.f.Close(); err != nil {
		return fmt.Errorf("%w: close descriptor %d: %w", ErrIO, fd, err)
	}
	return nil
}

// holding returns the descriptor backing id, or nil if id is not
// registered. The descriptor is borrowed: it remains owned by the entry
// and must not be closed by the caller.
func (lk *Locker) holding(id identity) *os.File {
	lk.mu.Lock()
	defer lk.mu.Unlock()
	if e, held := lk.held[id]; held {
		return e.f
	}
	return nil
}

// TryLock attempts to lock every path, in argument order, without
// blocking. All-or-nothing: if any path is already locked elsewhere or
// fails to resolve, the paths acquired so far are released in reverse
// order. Returns false only for the already-locked case.
func (lk *Locker) TryLock(paths ...string) (bool, error) {
	ids := make([]identity, 0, len(paths))
	rollback := func() {
		for i := len(ids) - 1; i >= 0; i-- {
			lk.release(ids[i], lk.opts.KeepEmpty)
		}
	}
	for _, path := range paths {
		id, ok, err := lk.tryAcquire(path)
		if err != nil {
			rollback()
			return false, err
		}
		if !ok {
			rollback()
			return false, nil
		}
		ids = append(ids, id)
	}
	return true, nil
}

// Lock locks every path in argument order, blocking until each is
// acquired, polling at Options.Interval. Callers locking overlapping sets
// of paths must order them consistently: two processes locking [A, B] and
// [B, A] can deadlock against each other.
func (lk *Locker) Lock(paths ...string) error {
	return lk.LockEvery(lk.opts.Interval, paths...)
}

// LockEvery is Lock with an explicit poll interval between attempts.
// A zero interval spins without sleeping.
func (lk *Locker) LockEvery(interval time.Duration, paths ...string) error {
	ids := make([]identity, 0, len(paths))
	for _, path := range paths {
		id, err := lk.acquire(path, interval)
		if err != nil {
			for i := len(ids) - 1; i >= 0; i-- {
				lk.release(ids[i], lk.opts.KeepEmpty)
			}
			return err
		}
		ids = append(ids, id)
	}
	return nil
}

// Unlock releases one reentrant hold on every path, in reverse argument
// order (last locked, first unlocked). A path that no longer resolves may
// mean the lockfile was deleted externally and the lock silently lost;
// under Options.Strict that reports ErrNotHeld, otherwise it is ignored.
func (lk *Locker) Unlock(paths ...string) error {
	var errs []error
	for i := len(paths) - 1; i >= 0; i-- {
		if err := lk.unlock(paths[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (lk *Locker) unlock(path string) error {
	if err := checkName(path); err != nil {
		return err
	}
	id, ok := pathIdentity(path)
	if !ok {
		if lk.opts.Strict {
			return fmt.Errorf("%w: %q does not resolve", ErrNotHeld, path)
		}
		return nil
	}
	if err := lk.release(id, lk.opts.KeepEmpty); err != nil {
		return fmt.Errorf("unlock %q: %w", path, err)
	}
	return nil
}

// TryLock attempts to lock every path via Default without blocking.
func TryLock(paths ...string) (bool, error) { return Default.TryLock(paths...) }

// Lock locks every path via Default, blocking until acquired.
func Lock(paths ...string) error { return Default.Lock(paths...) }

// LockEvery locks every path via Default, polling at the given interval.
func LockEvery(interval time.Duration, paths ...string) error {
	return Default.LockEvery(interval, paths...)
}

// Unlock releases one hold on every path via Default, in reverse order.
func Unlock(paths ...string) error { return Default.Unlock(paths...) }
