// Package base holds the small set of types and sentinel errors shared by
// every layer of the engine: the key/value size limits, the tombstone
// convention, and the §7 error kinds.
package base

import (
	"bytes"

	"github.com/cockroachdb/errors"
)

// MaxKeyLen and MaxValueLen bound a single record per spec.md §3: opaque
// byte sequences of length <= 2^16-1.
const (
	MaxKeyLen   = 1<<16 - 1
	MaxValueLen = 1<<16 - 1
)

// Error kinds, per spec.md §7. Each is a sentinel created with
// errors.New; callers test with errors.Is.
var (
	// ErrFormat covers a decode buffer shorter than required, a
	// count*entry-size mismatch, or a hash mismatch.
	ErrFormat = errors.New("lsmgo: format error")
	// ErrOutOfRange covers a read past file end or a key outside an
	// SST's [first_key, last_key] when locating a block.
	ErrOutOfRange = errors.New("lsmgo: out of range")
	// ErrInvalidIterator covers dereferencing or reading an end/invalid
	// iterator.
	ErrInvalidIterator = errors.New("lsmgo: invalid iterator")
	// ErrIO covers a region open/create failure.
	ErrIO = errors.New("lsmgo: i/o error")
	// ErrEmptyBuild covers attempting to build an SST with zero entries.
	ErrEmptyBuild = errors.New("lsmgo: cannot build an empty sst")
	// ErrNotFound is returned by Get when a key has no live value (it
	// was never written, or its last write was a Remove).
	ErrNotFound = errors.New("lsmgo: key not found")
	// ErrEmptyValueReserved is returned by Put when the caller supplies
	// a nil or zero-length value. The empty value is the tombstone
	// sentinel (spec.md §3); this rejects the collision explicitly
	// instead of silently swallowing a legitimate empty-value write.
	ErrEmptyValueReserved = errors.New("lsmgo: empty value is reserved for tombstones")
	// ErrKeyTooLarge / ErrValueTooLarge enforce the 2^16-1 length bound.
	ErrKeyTooLarge   = errors.New("lsmgo: key exceeds maximum length")
	ErrValueTooLarge = errors.New("lsmgo: value exceeds maximum length")
)

// Compare orders keys lexicographically as unsigned bytes, per spec.md §3.
func Compare(a, b []byte) int {
	return bytes.Compare(a, b)
}

// IsTombstone reports whether value is the tombstone sentinel (the empty
// value). Tombstone semantics live at the memtable/engine layer, not in
// the skiplist or block, per spec.md §4.B/§4.F.
func IsTombstone(value []byte) bool {
	return len(value) == 0
}

// CheckRecordSize validates a key/value pair against the spec's length
// bound, returning a wrapped ErrKeyTooLarge/ErrValueTooLarge on violation.
func CheckRecordSize(key, value []byte) error {
	if len(key) > MaxKeyLen {
		return errors.Wrapf(ErrKeyTooLarge, "key length %d exceeds %d", len(key), MaxKeyLen)
	}
	if len(value) > MaxValueLen {
		return errors.Wrapf(ErrValueTooLarge, "value length %d exceeds %d", len(value), MaxValueLen)
	}
	return nil
}
