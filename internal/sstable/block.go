package sstable

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/devlibx/lsmgo/internal/base"
)

// entryOverhead is the per-entry fixed cost counted against a block's
// capacity: the entry's own u16 key_len + u16 value_len header, plus the
// u16 offset-table slot it occupies. Matches spec.md §4.C's
// "k.len + v.len + 3*2".
const entryOverhead = 3 * 2

// Block is a bounded-capacity, sorted key/value page (spec.md §4.C): a
// growing data region plus a parallel offset table naming each entry's
// byte position within it.
type Block struct {
	capacity int
	data     []byte
	offsets  []uint16
}

// NewBlock returns an empty Block with the given soft capacity. The
// first entry is always admitted regardless of capacity (spec.md §4.C).
func NewBlock(capacity int) *Block {
	return &Block{capacity: capacity}
}

// Size returns data.len + 2*N + 2, the block's encoded size, per
// spec.md §3's invariant.
func (b *Block) Size() int {
	return len(b.data) + 2*len(b.offsets) + 2
}

// IsEmpty reports whether the block holds zero entries.
func (b *Block) IsEmpty() bool {
	return len(b.offsets) == 0
}

// NumEntries returns the number of entries currently held.
func (b *Block) NumEntries() int {
	return len(b.offsets)
}

// Add appends (key, value), in the order callers are expected to supply
// (non-decreasing by key; the builder guarantees this). It rejects and
// returns false if admitting the entry would push Size() over capacity
// and the block is already non-empty; the very first entry is always
// accepted even if it alone exceeds capacity.
func (b *Block) Add(key, value []byte) bool {
	if !b.IsEmpty() && b.Size()+len(key)+len(value)+entryOverhead > b.capacity {
		return false
	}

	offset := uint16(len(b.data))
	var hdr [2]byte
	binary.LittleEndian.PutUint16(hdr[:], uint16(len(key)))
	b.data = append(b.data, hdr[:]...)
	b.data = append(b.data, key...)
	binary.LittleEndian.PutUint16(hdr[:], uint16(len(value)))
	b.data = append(b.data, hdr[:]...)
	b.data = append(b.data, value...)

	b.offsets = append(b.offsets, offset)
	return true
}

// entryAt decodes the (key, value) pair stored at a byte offset within
// the data region.
func (b *Block) entryAt(offset uint16) (key, value []byte) {
	pos := int(offset)
	keyLen := binary.LittleEndian.Uint16(b.data[pos:])
	pos += 2
	key = b.data[pos : pos+int(keyLen)]
	pos += int(keyLen)
	valLen := binary.LittleEndian.Uint16(b.data[pos:])
	pos += 2
	value = b.data[pos : pos+int(valLen)]
	return key, value
}

// keyAt decodes only the key at a byte offset, for use in binary search.
func (b *Block) keyAt(offset uint16) []byte {
	keyLen := binary.LittleEndian.Uint16(b.data[offset:])
	start := int(offset) + 2
	return b.data[start : start+int(keyLen)]
}

// FirstKey returns the key of entry 0.
func (b *Block) FirstKey() []byte {
	if b.IsEmpty() {
		return nil
	}
	return b.keyAt(b.offsets[0])
}

// GetBinary binary-searches the offset table for an exact key match,
// returning the associated value.
func (b *Block) GetBinary(key []byte) ([]byte, bool) {
	lo, hi := 0, len(b.offsets)-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		cmp := base.Compare(b.keyAt(b.offsets[mid]), key)
		switch {
		case cmp == 0:
			_, v := b.entryAt(b.offsets[mid])
			return v, true
		case cmp < 0:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return nil, false
}

// EntryAt returns the (key, value) pair at index idx within the block, in
// the order entries were added. Used by the block iterator.
func (b *Block) EntryAt(idx int) (key, value []byte) {
	return b.entryAt(b.offsets[idx])
}

// seekIndex returns the index of the first entry whose key is >= probe,
// or NumEntries() if none qualifies. Used by the SST iterator to
// position within a block located via the block-meta directory.
func (b *Block) seekIndex(probe []byte) int {
	lo, hi := 0, len(b.offsets)
	for lo < hi {
		mid := (lo + hi) / 2
		if base.Compare(b.keyAt(b.offsets[mid]), probe) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Encode serializes the block as data || offsets (u16 LE each) || count
// (u16 LE), per spec.md §6.
func (b *Block) Encode() []byte {
	n := len(b.offsets)
	out := make([]byte, len(b.data)+2*n+2)
	copy(out, b.data)
	pos := len(b.data)
	for _, off := range b.offsets {
		binary.LittleEndian.PutUint16(out[pos:], off)
		pos += 2
	}
	binary.LittleEndian.PutUint16(out[pos:], uint16(n))
	return out
}

// DecodeBlock parses an encoded block. When withHash is true, the
// trailing 4 bytes are interpreted as a stored 32-bit hash over the
// preceding payload (computed with hash32); a mismatch is rejected with
// base.ErrFormat.
func DecodeBlock(encoded []byte, withHash bool) (*Block, error) {
	payload := encoded
	if withHash {
		if len(payload) < 4+2 {
			return nil, errors.Wrapf(base.ErrFormat, "encoded block too small for hash: %d bytes", len(payload))
		}
		hashPos := len(payload) - 4
		stored := binary.LittleEndian.Uint32(payload[hashPos:])
		computed := hash32(payload[:hashPos])
		if stored != computed {
			return nil, errors.Wrapf(base.ErrFormat, "block hash mismatch: stored %08x computed %08x", stored, computed)
		}
		payload = payload[:hashPos]
	}

	if len(payload) < 2 {
		return nil, errors.Wrapf(base.ErrFormat, "encoded block must be at least 2 bytes, got %d", len(payload))
	}

	numPos := len(payload) - 2
	n := int(binary.LittleEndian.Uint16(payload[numPos:]))

	minSize := 2 + n*2
	if len(payload) < minSize {
		return nil, errors.Wrapf(base.ErrFormat, "encoded block too small for %d entries", n)
	}

	offsetsPos := numPos - n*2
	offsets := make([]uint16, n)
	for i := 0; i < n; i++ {
		offsets[i] = binary.LittleEndian.Uint16(payload[offsetsPos+2*i:])
	}

	data := make([]byte, offsetsPos)
	copy(data, payload[:offsetsPos])

	return &Block{data: data, offsets: offsets}, nil
}
