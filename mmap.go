// Exclusive memory-mapped views of locked files.
//
// A View holds the lock on its file for exactly as long as the mapping is
// open: the mapping never outlives the lock, and the lock is not released
// while the mapping exists. Teardown is strictly ordered — flush the
// mapping, unmap it, then release the lock.
package locker

import (
	"fmt"
	"unsafe"
)

// Element constrains the fixed-width integral types a file can be viewed
// as.
type Element interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint | ~uintptr
}

// View is a locked file mapped into memory as a fixed-width array of T.
// The element count is the file size divided by the element width;
// trailing bytes that do not fill a whole element are inaccessible through
// the view. Views are not safe for concurrent use.
type View[T Element] struct {
	lk     *Locker
	id     identity
	data   []byte
	elems  []T
	closed bool
}

// Map locks path via Default and maps its contents as elements of type T.
func Map[T Element](path string) (*View[T], error) {
	return MapWith[T](Default, path)
}

// MapWith blocks until lk holds the lock on path, then maps the file's
// contents. If mapping fails after the lock was acquired, the lock is
// released before the error is returned. An empty file yields a valid
// empty view with no mapping.
func MapWith[T Element](lk *Locker, path string) (*View[T], error) {
	id, err := lk.acquire(path, lk.opts.Interval)
	if err != nil {
		return nil, err
	}

	f := lk.holding(id)
	if f == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotHeld, path)
	}
	info, err := f.Stat()
	if err != nil {
		lk.release(id, lk.opts.KeepEmpty)
		return nil, fmt.Errorf("%w: stat %q: %w", ErrIO, path, err)
	}

	v := &View[T]{lk: lk, id: id}
	width := int64(unsafe.Sizeof(*new(T)))
	if n := info.Size() / width; n > 0 {
		data, err := mapShared(int(f.Fd()), int(info.Size()))
		if err != nil {
			lk.release(id, lk.opts.KeepEmpty)
			return nil, fmt.Errorf("%w: mmap %q: %w", ErrIO, path, err)
		}
		v.data = data
		v.elems = unsafe.Slice((*T)(unsafe.Pointer(&data[0])), n)
	}
	return v, nil
}

// Len returns the number of whole elements in the view.
func (v *View[T]) Len() int { return len(v.elems) }

// Empty reports whether the view contains no elements.
func (v *View[T]) Empty() bool { return len(v.elems) == 0 }

// At returns element i, or ErrRange if i is out of bounds.
func (v *View[T]) At(i int) (T, error) {
	if i < 0 || i >= len(v.elems) {
		var zero T
		return zero, fmt.Errorf("%w: index %d, size %d", ErrRange, i, len(v.elems))
	}
	return v.elems[i], nil
}

// Put stores val at element i, or returns ErrRange if i is out of bounds.
func (v *View[T]) Put(i int, val T) error {
	if i < 0 || i >= len(v.elems) {
		return fmt.Errorf("%w: index %d, size %d", ErrRange, i, len(v.elems))
	}
	v.elems[i] = val
	return nil
}

// Slice returns the mapped elements for unchecked access. The slice is
// invalid after Close.
func (v *View[T]) Slice() []T { return v.elems }

// Flush forces modified pages back to storage. A flush failure does not
// invalidate the mapping; callers may retry or proceed.
func (v *View[T]) Flush() error {
	if v.data == nil {
		return nil
	}
	if err := syncShared(v.data); err != nil {
		return fmt.Errorf("%w: msync: %w", ErrIO, err)
	}
	return nil
}

// Close flushes the mapping, unmaps it, and then releases the lock, in
// that order. Safe to call more than once.
func (v *View[T]) Close() error {
	if v.closed {
		return nil
	}
	v.closed = true

	var first error
	if v.data != nil {
		first = v.Flush()
		if err := unmapShared(v.data); err != nil && first == nil {
			first = fmt.Errorf("%w: munmap: %w", ErrIO, err)
		}
		v.data = nil
		v.elems = nil
	}
	if err := v.lk.release(v.id, v.lk.opts.KeepEmpty); err != nil && first == nil {
		first = err
	}
	return first
}
