//go:build unix && !linux

package locker

import "os"

// fdPath has no portable implementation outside Linux (no /proc fd table).
// Callers degrade gracefully: empty-lockfile cleanup is skipped and
// diagnostics fall back to descriptor numbers.
func fdPath(fd int) (string, error) {
	return "", os.ErrInvalid
}
