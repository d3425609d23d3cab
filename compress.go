// Compressed variants of the locked read/write helpers.
//
// WritePacked stores a single zstd frame; ReadPacked expects one. Useful
// for lockfiles that double as state snapshots.
package locker

import (
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"
)

// Shared encoder/decoder — both are documented as safe for concurrent use,
// and construction is expensive enough that one per call would dominate
// the cost of packing small files.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// WritePacked replaces the content of path with data compressed as one
// zstd frame, under its lock.
func (lk *Locker) WritePacked(path string, data []byte) error {
	return lk.transfer(path, os.O_TRUNC, zstdEncoder.EncodeAll(data, nil))
}

// ReadPacked reads path under its lock and decompresses its content.
// An empty file yields nil, matching Read on a nonexistent path.
func (lk *Locker) ReadPacked(path string) ([]byte, error) {
	packed, err := lk.Read(path)
	if err != nil {
		return nil, err
	}
	if len(packed) == 0 {
		return nil, nil
	}
	out, err := zstdDecoder.DecodeAll(packed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd %q: %w", ErrIO, path, err)
	}
	return out, nil
}

// WritePacked compresses data into path via Default.
func WritePacked(path string, data []byte) error { return Default.WritePacked(path, data) }

// ReadPacked reads and decompresses path via Default.
func ReadPacked(path string) ([]byte, error) { return Default.ReadPacked(path) }
