// Scope-bound locking: one Guard pairs one acquisition with exactly one
// guaranteed release.
package locker

import "time"

// Guard holds one reentrant acquisition of each of its paths for its
// lifetime. Obtain one with Locker.Guard or NewGuard and release it with
// Close, typically deferred:
//
//	g, err := locker.NewGuard("a.lock")
//	if err != nil {
//		return err
//	}
//	defer g.Close()
//
// A Guard must not be copied: each copy would attempt its own release of
// the same holds. Close is idempotent; the second and later calls are
// no-ops.
type Guard struct {
	lk     *Locker
	ids    []identity
	keep   bool
	closed bool
}

// Guard blocks until every path is locked, in argument order, and returns
// a Guard holding them all. Filenames are validated before any syscall, so
// an invalid name fails without acquiring or creating anything. If a later
// path fails, earlier acquisitions are rolled back in reverse order.
func (lk *Locker) Guard(paths ...string) (*Guard, error) {
	return lk.GuardEvery(lk.opts.Interval, paths...)
}

// GuardEvery is Guard with an explicit poll interval between lock attempts.
func (lk *Locker) GuardEvery(interval time.Duration, paths ...string) (*Guard, error) {
	for _, path := range paths {
		if err := checkName(path); err != nil {
			return nil, err
		}
	}
	ids := make([]identity, 0, len(paths))
	for _, path := range paths {
		id, err := lk.acquire(path, interval)
		if err != nil {
			for i := len(ids) - 1; i >= 0; i-- {
				lk.release(ids[i], lk.opts.KeepEmpty)
			}
			return nil, err
		}
		ids = append(ids, id)
	}
	return &Guard{lk: lk, ids: ids, keep: lk.opts.KeepEmpty}, nil
}

// Keep marks the Guard so that Close leaves zero-byte lockfiles on disk
// instead of removing them.
func (g *Guard) Keep() {
	g.keep = true
}

// Close releases every hold in reverse acquisition order (last locked,
// first unlocked). Safe to call more than once.
func (g *Guard) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	var first error
	for i := len(g.ids) - 1; i >= 0; i-- {
		if err := g.lk.release(g.ids[i], g.keep); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewGuard blocks until every path is locked via Default.
func NewGuard(paths ...string) (*Guard, error) { return Default.Guard(paths...) }
