// Package locker provides advisory, reentrant file locking for coordinating
// independent processes on a single host, using nothing but the filesystem.
//
// Locks are cooperative: they bind only processes that use the same
// mechanism (flock-style advisory locking). Within one process a lock is
// reentrant — nested acquisitions of the same file succeed immediately and
// require a matching number of releases. Files are identified by their
// (device, inode) pair, not by path, so hard links, relative paths and
// "../" aliases of the same file all collapse to one lock.
//
// The package offers process-safety, not thread-safety: two goroutines of
// the same process can both hold the same reentrant lock and still race on
// the file's contents. Lockfiles are ordinary regular files, created on
// demand; a lockfile that is still empty when its last lock is released is
// removed again.
//
// On top of the lock primitive the package provides scope-bound guards,
// exclusive memory-mapped views, and whole-file read/write helpers that
// acquire and release the lock around a single transfer.
package locker

import "errors"

// Sentinel errors for programmatic handling. Callers can use errors.Is to
// distinguish caller mistakes (ErrInvalidName, ErrRange) from filesystem
// conditions (ErrNotRegularFile, ErrPermission, ErrIO) and from lost-lock
// situations (ErrNotHeld).
var (
	ErrInvalidName    = errors.New("invalid filename")
	ErrNotRegularFile = errors.New("not a regular file")
	ErrPermission     = errors.New("permission denied")
	ErrIO             = errors.New("i/o failure")
	ErrRange          = errors.New("index out of range")
	ErrNotHeld        = errors.New("lock not held")
)
