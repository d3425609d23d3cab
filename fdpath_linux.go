//go:build linux

package locker

import (
	"os"
	"strconv"
)

// fdPath recovers the current path of an open descriptor from the
// process's own fd table. Used instead of remembering the original path
// string: the file may have been renamed since acquisition, and release
// must unlink what the descriptor actually names.
func fdPath(fd int) (string, error) {
	return os.Readlink("/proc/self/fd/" + strconv.Itoa(fd))
}
