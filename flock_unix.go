//go:build unix

// OS-level advisory locking, flock(2).
//
// Only the non-blocking form is used: blocking acquisition is built as a
// retry loop around it so the TOCTOU identity check can run after every
// successful attempt. EINTR is retried; EWOULDBLOCK means another holder.
package locker

import (
	"golang.org/x/sys/unix"
)

// flockTry attempts an exclusive non-blocking lock on fd. Returns false
// with a nil error when the lock is held elsewhere.
func flockTry(fd int) (bool, error) {
	for {
		err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB)
		switch err {
		case nil:
			return true, nil
		case unix.EINTR:
			continue
		case unix.EWOULDBLOCK:
			return false, nil
		default:
			return false, err
		}
	}
}

// flockDrop releases the lock on fd.
func flockDrop(fd int) error {
	for {
		err := unix.Flock(fd, unix.LOCK_UN)
		if err != unix.EINTR {
			return err
		}
	}
}
