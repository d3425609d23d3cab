// Identity resolution: from a user-supplied path to a stable lock identity
// and an open descriptor suitable for locking.
//
// The identity of a lock is the (device, inode) pair of the opened file,
// never the path string. Paths are not stable — a file can be replaced or
// deleted and recreated under the same name with a different identity —
// and two different strings can alias the same file. Resolving through the
// descriptor makes locking "./a.lock" and "a.lock" mutually exclusive.
package locker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// identity uniquely names a filesystem object, stable across path aliasing.
type identity struct {
	dev uint64
	ino uint64
}

// entry is one held lock: the descriptor carrying the kernel flock, the
// reentrant count (>= 1 while registered) and the pid that created it.
// The descriptor is owned exclusively by the registry while the count is
// nonzero; no other component may close it.
type entry struct {
	f   *os.File
	n   int
	pid int
}

// checkName rejects names that cannot denote a lockable regular file.
// Called before any syscall so that misuse fails fast and side-effect free.
func checkName(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty filename", ErrInvalidName)
	}
	if strings.HasSuffix(path, string(os.PathSeparator)) {
		return fmt.Errorf("%w: %q ends with a path separator", ErrInvalidName, path)
	}
	return nil
}

// resolve validates path, creates the file (and missing parent directories)
// if needed, and returns an open read/write descriptor plus the identity
// captured from that descriptor. It performs the permission check of the
// acquisition contract but does not itself take the lock.
func (lk *Locker) resolve(path string) (*os.File, identity, error) {
	if err := checkName(path); err != nil {
		return nil, identity{}, err
	}

	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.Mode().IsRegular() {
			return nil, identity{}, fmt.Errorf("%w: %q", ErrNotRegularFile, path)
		}
		if !canReadWrite(path) {
			return nil, identity{}, fmt.Errorf("%w: %q", ErrPermission, path)
		}
	case os.IsNotExist(err):
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o777); err != nil {
			return nil, identity{}, fmt.Errorf("%w: create directory %q: %w", ErrIO, dir, err)
		}
		if !canReadWrite(dir) {
			return nil, identity{}, fmt.Errorf("%w: directory %q", ErrPermission, dir)
		}
	default:
		return nil, identity{}, fmt.Errorf("%w: stat %q: %w", ErrIO, path, err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		switch {
		case os.IsPermission(err):
			return nil, identity{}, fmt.Errorf("%w: open %q: %w", ErrPermission, path, err)
		case isDirectory(err):
			return nil, identity{}, fmt.Errorf("%w: %q", ErrNotRegularFile, path)
		default:
			return nil, identity{}, fmt.Errorf("%w: open %q: %w", ErrIO, path, err)
		}
	}

	id, regular, err := fileIdentity(f)
	if err != nil {
		f.Close()
		return nil, identity{}, fmt.Errorf("%w: stat %q: %w", ErrIO, path, err)
	}
	// The pre-open stat raced with the open; trust only the descriptor.
	if !regular {
		f.Close()
		return nil, identity{}, fmt.Errorf("%w: %q", ErrNotRegularFile, path)
	}
	return f, id, nil
}
