// Locked whole-file writes.
//
// Values are formatted into one buffer first so the file sees a single
// write, then synced. The lock is released on every path out.
package locker

import (
	"bytes"
	"fmt"
	"os"
	"unsafe"

	json "github.com/goccy/go-json"
)

// transfer performs one locked buffered write to path. flag selects
// truncate or append.
func (lk *Locker) transfer(path string, flag int, data []byte) error {
	g, err := lk.Guard(path)
	if err != nil {
		return err
	}
	defer g.Close()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|flag, 0o666)
	if err != nil {
		return fmt.Errorf("%w: open %q: %w", ErrIO, path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("%w: write %q: %w", ErrIO, path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("%w: fsync %q: %w", ErrIO, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %q: %w", ErrIO, path, err)
	}
	return nil
}

// format concatenates the default representations of values with no
// separators, like a chain of stream insertions.
func format(values []any, newline bool) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		fmt.Fprint(&buf, v)
	}
	if newline {
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Write replaces the content of path with the formatted values, under its
// lock.
func (lk *Locker) Write(path string, values ...any) error {
	return lk.transfer(path, os.O_TRUNC, format(values, false))
}

// WriteLine is Write with a trailing newline.
func (lk *Locker) WriteLine(path string, values ...any) error {
	return lk.transfer(path, os.O_TRUNC, format(values, true))
}

// Append appends the formatted values to path, under its lock.
func (lk *Locker) Append(path string, values ...any) error {
	return lk.transfer(path, os.O_APPEND, format(values, false))
}

// AppendLine is Append with a trailing newline.
func (lk *Locker) AppendLine(path string, values ...any) error {
	return lk.transfer(path, os.O_APPEND, format(values, true))
}

// WriteJSON replaces the content of path with the JSON encoding of v,
// newline-terminated, under its lock.
func (lk *Locker) WriteJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return lk.transfer(path, os.O_TRUNC, append(data, '\n'))
}

// valueBytes exposes the in-memory byte image of vals without copying.
func valueBytes[T Element](vals []T) []byte {
	if len(vals) == 0 {
		return nil
	}
	width := int(unsafe.Sizeof(*new(T)))
	return unsafe.Slice((*byte)(unsafe.Pointer(&vals[0])), len(vals)*width)
}

// WriteValuesWith replaces the content of path with the byte image of
// vals, under lk's lock.
func WriteValuesWith[T Element](lk *Locker, path string, vals []T) error {
	return lk.transfer(path, os.O_TRUNC, valueBytes(vals))
}

// AppendValuesWith appends the byte image of vals to path, under lk's
// lock.
func AppendValuesWith[T Element](lk *Locker, path string, vals []T) error {
	return lk.transfer(path, os.O_APPEND, valueBytes(vals))
}

// Write replaces the content of path with the formatted values via
// Default.
func Write(path string, values ...any) error { return Default.Write(path, values...) }

// WriteLine is Write with a trailing newline via Default.
func WriteLine(path string, values ...any) error { return Default.WriteLine(path, values...) }

// Append appends the formatted values to path via Default.
func Append(path string, values ...any) error { return Default.Append(path, values...) }

// AppendLine is Append with a trailing newline via Default.
func AppendLine(path string, values ...any) error { return Default.AppendLine(path, values...) }

// WriteJSON replaces the content of path with the JSON encoding of v via
// Default.
func WriteJSON(path string, v any) error { return Default.WriteJSON(path, v) }

// WriteValues replaces the content of path with the byte image of vals
// via Default.
func WriteValues[T Element](path string, vals []T) error {
	return WriteValuesWith(Default, path, vals)
}

// AppendValues appends the byte image of vals to path via Default.
func AppendValues[T Element](path string, vals []T) error {
	return AppendValuesWith(Default, path, vals)
}
