// Locked whole-file reads.
//
// Every helper acquires the lock, performs one buffered transfer, and
// releases the lock on all paths out, errors included. Reading a path
// that does not exist yields empty content: the acquisition creates the
// lockfile and the release removes it again if it stayed empty.
package locker

import (
	"fmt"
	"os"
	"strings"
	"unsafe"

	json "github.com/goccy/go-json"
)

// Read returns the entire content of path, read under its lock.
func (lk *Locker) Read(path string) ([]byte, error) {
	g, err := lk.Guard(path)
	if err != nil {
		return nil, err
	}
	defer g.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %w", ErrIO, path, err)
	}
	return data, nil
}

// ReadString returns the entire content of path as a string.
func (lk *Locker) ReadString(path string) (string, error) {
	data, err := lk.Read(path)
	return string(data), err
}

// ReadTrimmed returns the content of path with trailing newlines removed.
// Both "\n" and "\r\n" endings are stripped, repeatedly.
func (lk *Locker) ReadTrimmed(path string) (string, error) {
	data, err := lk.ReadString(path)
	if err != nil {
		return "", err
	}
	for strings.HasSuffix(data, "\n") {
		data = strings.TrimSuffix(data, "\n")
		data = strings.TrimSuffix(data, "\r")
	}
	return data, nil
}

// ReadJSON reads path under its lock and unmarshals the content into v.
func (lk *Locker) ReadJSON(path string, v any) error {
	data, err := lk.Read(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// ReadValuesWith reads path under lk's lock as a sequence of fixed-width
// values. Trailing bytes that do not fill a whole element are dropped,
// matching the view's truncation policy.
func ReadValuesWith[T Element](lk *Locker, path string) ([]T, error) {
	data, err := lk.Read(path)
	if err != nil {
		return nil, err
	}
	width := int(unsafe.Sizeof(*new(T)))
	n := len(data) / width
	vals := make([]T, n)
	if n > 0 {
		copy(unsafe.Slice((*byte)(unsafe.Pointer(&vals[0])), n*width), data)
	}
	return vals, nil
}

// Read returns the content of path via Default.
func Read(path string) ([]byte, error) { return Default.Read(path) }

// ReadString returns the content of path as a string via Default.
func ReadString(path string) (string, error) { return Default.ReadString(path) }

// ReadTrimmed returns the content of path without trailing newlines via
// Default.
func ReadTrimmed(path string) (string, error) { return Default.ReadTrimmed(path) }

// ReadJSON unmarshals the content of path into v via Default.
func ReadJSON(path string, v any) error { return Default.ReadJSON(path, v) }

// ReadValues reads path as fixed-width values via Default.
func ReadValues[T Element](path string) ([]T, error) {
	return ReadValuesWith[T](Default, path)
}
