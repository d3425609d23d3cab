//go:build unix

package locker

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// fileIdentity captures the (device, inode) identity of an open descriptor
// and whether it refers to a regular file.
func fileIdentity(f *os.File) (identity, bool, error) {
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		return identity{}, false, err
	}
	regular := st.Mode&unix.S_IFMT == unix.S_IFREG
	return identity{dev: uint64(st.Dev), ino: uint64(st.Ino)}, regular, nil
}

// pathIdentity resolves a path to its current identity without opening it.
// Returns ok=false if the path does not resolve or has no remaining links.
func pathIdentity(path string) (identity, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return identity{}, false
	}
	if st.Nlink == 0 {
		return identity{}, false
	}
	return identity{dev: uint64(st.Dev), ino: uint64(st.Ino)}, true
}

// canReadWrite matches the owner/group/other permission bits of path
// against this process's uid and gid. World read+write always suffices.
// Root bypasses permission bits, as the kernel does.
func canReadWrite(path string) bool {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return false
	}
	uid := unix.Getuid()
	if uid == 0 {
		return true
	}
	mode := uint32(st.Mode)
	switch {
	case uint32(uid) == st.Uid && mode&0o600 == 0o600:
		return true
	case uint32(unix.Getgid()) == st.Gid && mode&0o060 == 0o060:
		return true
	case mode&0o006 == 0o006:
		return true
	}
	return false
}

// isDirectory reports whether err is the EISDIR an open(O_RDWR) on a
// directory produces.
func isDirectory(err error) bool {
	return errors.Is(err, unix.EISDIR)
}
