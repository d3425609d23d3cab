// Locker type, configuration and the process-wide default instance.
//
// A Locker owns the registry that maps file identities to live lock
// entries. The kernel flock is per file descriptor, not per path, so
// reentrancy has to be tracked per identity in process-wide state; the
// Locker makes that state an explicit, injectable object. Most programs
// use the package-level functions, which delegate to Default — one Locker
// per process, the conventional choice. Tests construct isolated
// instances with New.
package locker

import (
	"sort"
	"sync"
	"time"
)

// Options configures a Locker. The zero value selects defaults.
type Options struct {
	Interval  time.Duration // Poll interval for blocking acquisition (default 1ms)
	KeepEmpty bool          // Keep zero-byte lockfiles on release
	Strict    bool          // Report ErrNotHeld instead of ignoring unlocks of unheld files
}

// Locker tracks every lock currently held by this process. Methods are
// safe for concurrent use; the mutex serialises registry mutation only,
// never access to locked file contents.
type Locker struct {
	opts Options
	mu   sync.Mutex
	held map[identity]*entry
}

// New returns a Locker with its own private registry.
func New(opts Options) *Locker {
	if opts.Interval == 0 {
		opts.Interval = time.Millisecond
	}
	return &Locker{
		opts: opts,
		held: make(map[identity]*entry),
	}
}

// Default is the process-wide Locker used by the package-level functions.
var Default = New(Options{})

// IsLocked reports whether this process currently holds a lock on path.
// A path that does not resolve (deleted, never locked) reports false.
func (lk *Locker) IsLocked(path string) bool {
	if checkName(path) != nil {
		return false
	}
	id, ok := pathIdentity(path)
	if !ok {
		return false
	}
	lk.mu.Lock()
	defer lk.mu.Unlock()
	_, held := lk.held[id]
	return held
}

// Locked returns the canonical paths of every lock currently held by this
// process, sorted. Paths are recovered from the descriptors themselves, so
// they reflect renames that happened after acquisition.
func (lk *Locker) Locked() []string {
	lk.mu.Lock()
	defer lk.mu.Unlock()
	paths := make([]string, 0, len(lk.held))
	for _, e := range lk.held {
		if name, err := fdPath(int(e.f.Fd())); err == nil {
			paths = append(paths, name)
		}
	}
	sort.Strings(paths)
	return paths
}

// Clear force-releases every lock held by this Locker, best effort.
// Lockfiles are kept even when empty: another process may already have
// re-acquired one, and destroying its token is worse than leaking a file.
// Unsafe if any locked file is currently open for I/O through a view or
// helper.
func (lk *Locker) Clear() {
	lk.mu.Lock()
	defer lk.mu.Unlock()
	for id, e := range lk.held {
		releaseEntry(e, true)
		delete(lk.held, id)
	}
}

// Close releases all held locks and retires the Locker. Equivalent to
// Clear; provided so a Locker can sit behind an io.Closer.
func (lk *Locker) Close() error {
	lk.Clear()
	return nil
}

// IsLocked reports whether this process holds a lock on path via Default.
func IsLocked(path string) bool { return Default.IsLocked(path) }

// Locked returns the canonical paths of all locks held via Default.
func Locked() []string { return Default.Locked() }

// Clear force-releases every lock held via Default.
func Clear() { Default.Clear() }
