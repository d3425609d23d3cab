// Locked file management: copy, move and remove while holding the locks
// of every file involved.
package locker

import (
	"fmt"
	"io"
	"os"
)

// Copy locks src and dst, then replaces dst's content with src's.
func (lk *Locker) Copy(src, dst string) error {
	g, err := lk.Guard(src, dst)
	if err != nil {
		return err
	}
	defer g.Close()

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: open %q: %w", ErrIO, src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return fmt.Errorf("%w: open %q: %w", ErrIO, dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("%w: copy %q to %q: %w", ErrIO, src, dst, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("%w: fsync %q: %w", ErrIO, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: close %q: %w", ErrIO, dst, err)
	}
	return nil
}

// Move copies src to dst under both locks, then removes src. Implemented
// as copy-and-remove rather than rename so it works across filesystems
// and so dst's lock identity is the one acquired here.
func (lk *Locker) Move(src, dst string) error {
	if err := lk.Copy(src, dst); err != nil {
		return err
	}
	return lk.Remove(src)
}

// Remove locks path and unlinks it. The lock's descriptor survives until
// release, so a concurrent holder blocks until the removal is complete.
func (lk *Locker) Remove(path string) error {
	g, err := lk.Guard(path)
	if err != nil {
		return err
	}
	defer g.Close()

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("%w: remove %q: %w", ErrIO, path, err)
	}
	return nil
}

// Copy locks src and dst via Default and copies src's content to dst.
func Copy(src, dst string) error { return Default.Copy(src, dst) }

// Move locks src and dst via Default and moves src to dst.
func Move(src, dst string) error { return Default.Move(src, dst) }

// Remove locks path via Default and unlinks it.
func Remove(path string) error { return Default.Remove(path) }
