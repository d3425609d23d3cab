// Checksums computed under a file's lock.
//
// Sum reads the whole file while holding its lock, so the digest is of a
// consistent snapshot even while other processes are writing through
// their own locks. The result is 16 hex characters regardless of
// algorithm.
package locker

import (
	"fmt"
	"hash/fnv"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// Checksum algorithm constants.
const (
	AlgXXHash3 = 1 // Default, fastest
	AlgFNV1a   = 2 // No external dependencies
	AlgBlake2b = 3 // Best distribution
)

// Sum returns the 64-bit digest of path's content as 16 hex characters,
// computed under the file's lock. An unknown algorithm falls back to
// xxHash3.
func (lk *Locker) Sum(path string, alg int) (string, error) {
	data, err := lk.Read(path)
	if err != nil {
		return "", err
	}
	switch alg {
	case AlgFNV1a:
		h := fnv.New64a()
		h.Write(data)
		return fmt.Sprintf("%016x", h.Sum64()), nil
	case AlgBlake2b:
		h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
		h.Write(data)
		return fmt.Sprintf("%016x", h.Sum(nil)), nil
	default:
		return fmt.Sprintf("%016x", xxh3.Hash(data)), nil
	}
}

// Sum returns the digest of path's content via Default.
func Sum(path string, alg int) (string, error) { return Default.Sum(path, alg) }
