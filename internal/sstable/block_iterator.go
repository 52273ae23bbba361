package sstable

import "github.com/devlibx/lsmgo/internal/base"

// BlockIterator is an index-based cursor over a Block's entries, in the
// order they were added (spec.md §4.G).
type BlockIterator struct {
	block *Block
	idx   int
}

// NewBlockIterator returns an iterator positioned at entry 0.
func NewBlockIterator(b *Block) *BlockIterator {
	return &BlockIterator{block: b, idx: 0}
}

// NewBlockIteratorAt returns an iterator positioned at a specific index.
func NewBlockIteratorAt(b *Block, idx int) *BlockIterator {
	return &BlockIterator{block: b, idx: idx}
}

// NewBlockIteratorSeek returns an iterator positioned at the first entry
// whose key is >= probe. Used by the SST iterator's seek logic; unlike
// NewBlockIteratorAtKey, this never fails — it lands on end if probe is
// greater than every key in the block.
func NewBlockIteratorSeek(b *Block, probe []byte) *BlockIterator {
	return &BlockIterator{block: b, idx: b.seekIndex(probe)}
}

// NewBlockIteratorAtKey returns an iterator positioned at the entry whose
// key exactly equals probe, or ok=false if no such entry exists. Used by
// Lookup for exact-match point reads, where NewBlockIteratorSeek's
// lower-bound landing would force the caller to re-check key equality
// itself.
func NewBlockIteratorAtKey(b *Block, probe []byte) (*BlockIterator, bool) {
	idx := b.seekIndex(probe)
	if idx >= b.NumEntries() {
		return nil, false
	}
	if k, _ := b.EntryAt(idx); string(k) != string(probe) {
		return nil, false
	}
	return &BlockIterator{block: b, idx: idx}, true
}

// IsEnd reports whether the iterator has advanced past the last entry.
func (it *BlockIterator) IsEnd() bool {
	return it.idx >= it.block.NumEntries()
}

// Key returns the current entry's key. Deref on an end iterator panics
// with base.ErrInvalidIterator, matching the Iterator contract (spec.md
// §4.G/§7).
func (it *BlockIterator) Key() []byte {
	if it.IsEnd() {
		panic(base.ErrInvalidIterator)
	}
	k, _ := it.block.EntryAt(it.idx)
	return k
}

// Value returns the current entry's value.
func (it *BlockIterator) Value() []byte {
	if it.IsEnd() {
		panic(base.ErrInvalidIterator)
	}
	_, v := it.block.EntryAt(it.idx)
	return v
}

// Advance increments the index, invalidating any cached (key, value).
func (it *BlockIterator) Advance() {
	it.idx++
}
