package sstable

import (
	"github.com/cockroachdb/errors"
	"github.com/devlibx/lsmgo/internal/base"
)

// Iterator walks an SST's entries in ascending key order, loading blocks
// on demand (spec.md §4.G).
type Iterator struct {
	sst       *SST
	blockIdx  int
	blockIter *BlockIterator
}

// NewIterator returns an iterator positioned at the table's first entry.
func NewIterator(s *SST) (*Iterator, error) {
	it := &Iterator{sst: s}
	if err := it.SeekFirst(); err != nil {
		return nil, err
	}
	return it, nil
}

// SeekFirst positions the iterator at the table's smallest key.
func (it *Iterator) SeekFirst() error {
	if it.sst.NumBlocks() == 0 {
		it.blockIter = nil
		return nil
	}
	it.blockIdx = 0
	b, err := it.sst.ReadBlock(0)
	if err != nil {
		return err
	}
	it.blockIter = NewBlockIterator(b)
	return nil
}

// Seek positions the iterator at the first entry whose key is >= key.
// If key is outside the table's [FirstKey, LastKey] range (per
// SST.FindBlockIdx), it fails with base.ErrOutOfRange and leaves the
// iterator at end.
func (it *Iterator) Seek(key []byte) error {
	idx, err := it.sst.FindBlockIdx(key)
	if err != nil {
		it.blockIter = nil
		return err
	}
	b, err := it.sst.ReadBlock(idx)
	if err != nil {
		it.blockIter = nil
		return err
	}
	it.blockIdx = idx
	it.blockIter = NewBlockIteratorSeek(b, key)
	return nil
}

// Lookup performs an exact-match point read: it locates the block that
// could hold key via FindBlockIdx, reads it, and constructs a
// NewBlockIteratorAtKey cursor over it. ok is false if key isn't present
// in the table at all, or if it falls outside the table's key range
// entirely (in which case err is also nil — "not found" and
// "out-of-range" are both simply "absent" from a point lookup's
// perspective). Grounded in spec.md §4.G's block-iterator-by-exact-probe
// variant, used here as the SST-level seek logic it was written for.
func Lookup(s *SST, key []byte) (value []byte, ok bool, err error) {
	idx, err := s.FindBlockIdx(key)
	if err != nil {
		if errors.Is(err, base.ErrOutOfRange) {
			return nil, false, nil
		}
		return nil, false, err
	}

	b, err := s.ReadBlock(idx)
	if err != nil {
		return nil, false, err
	}

	bit, found := NewBlockIteratorAtKey(b, key)
	if !found {
		return nil, false, nil
	}
	return bit.Value(), true, nil
}

// IsEnd reports whether the iterator has exhausted the table.
func (it *Iterator) IsEnd() bool {
	return it.blockIter == nil || it.blockIter.IsEnd()
}

// Close is a no-op: an SST iterator holds no locks and owns no resources
// beyond the SST itself, which outlives it. It exists so *Iterator
// satisfies internal/iterator.Closer alongside the memtable and merge
// iterators.
func (it *Iterator) Close() error { return nil }

// Key returns the current entry's key. Deref on an end iterator panics
// with base.ErrInvalidIterator, matching the Iterator contract (spec.md
// §4.G/§7).
func (it *Iterator) Key() []byte {
	if it.IsEnd() {
		panic(base.ErrInvalidIterator)
	}
	return it.blockIter.Key()
}

// Value returns the current entry's value.
func (it *Iterator) Value() []byte {
	if it.IsEnd() {
		panic(base.ErrInvalidIterator)
	}
	return it.blockIter.Value()
}

// Advance steps the inner block iterator; once it reaches its end, the
// next block is loaded (if any remain), otherwise the SST iterator
// becomes end.
func (it *Iterator) Advance() {
	if it.blockIter == nil {
		return
	}
	it.blockIter.Advance()
	if !it.blockIter.IsEnd() {
		return
	}

	it.blockIdx++
	if it.blockIdx >= it.sst.NumBlocks() {
		it.blockIter = nil
		return
	}
	b, err := it.sst.ReadBlock(it.blockIdx)
	if err != nil {
		// Advance is documented infallible once constructed; a read
		// failure here means the underlying file was corrupted or
		// truncated after construction, which this layer cannot
		// recover from. Surface it the same way an end-of-table
		// iterator would, rather than panicking a caller mid-scan.
		it.blockIter = nil
		return
	}
	it.blockIter = NewBlockIteratorAt(b, 0)
}
