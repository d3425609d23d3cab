//go:build unix

package locker

import (
	"golang.org/x/sys/unix"
)

// mapShared maps length bytes of fd read/write. MAP_SHARED, so stores are
// visible to other mappings of the file and reach disk via msync.
func mapShared(fd, length int) ([]byte, error) {
	return unix.Mmap(fd, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

func unmapShared(data []byte) error {
	return unix.Munmap(data)
}

// syncShared writes modified pages back synchronously.
func syncShared(data []byte) error {
	return unix.Msync(data, unix.MS_SYNC)
}
