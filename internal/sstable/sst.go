package sstable

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/devlibx/lsmgo/internal/base"
	"github.com/devlibx/lsmgo/region"
)

// SST is an immutable on-disk sorted table: a region plus its decoded
// block-meta directory and cached first/last keys (spec.md §3/§4.E).
type SST struct {
	id         uint64
	region     region.Region
	metas      []BlockMeta
	metaOffset int64
	firstKey   []byte
	lastKey    []byte
}

// ID returns the SST's numeric identifier.
func (s *SST) ID() uint64 { return s.id }

// FirstKey returns the smallest key stored in the table.
func (s *SST) FirstKey() []byte { return s.firstKey }

// LastKey returns the largest key stored in the table.
func (s *SST) LastKey() []byte { return s.lastKey }

// NumBlocks returns the number of data blocks in the table.
func (s *SST) NumBlocks() int { return len(s.metas) }

// Size returns the table's total size on disk, in bytes. For a handle
// from CreateWithMetaOnly it returns the fileSize given there.
func (s *SST) Size() int64 {
	if s.region == nil {
		return s.metaOffset
	}
	return s.region.Size()
}

// Close releases the underlying region.
func (s *SST) Close() error { return s.region.Close() }

// Open reads an SST's meta section (its trailer points at it) out of an
// already-open region, returning a handle with the block-meta directory
// and first/last keys populated (spec.md §4.E).
func Open(id uint64, reg region.Region) (*SST, error) {
	size := reg.Size()
	if size < 4 {
		return nil, errors.Wrapf(base.ErrFormat, "sst %d: file too small (%d bytes)", id, size)
	}

	trailer, err := reg.Read(size-4, 4)
	if err != nil {
		return nil, err
	}
	metaOffset := int64(binary.LittleEndian.Uint32(trailer))

	if metaOffset < 0 || metaOffset > size-4 {
		return nil, errors.Wrapf(base.ErrFormat, "sst %d: meta offset %d out of range", id, metaOffset)
	}

	metaBytes, err := reg.Read(metaOffset, size-4-metaOffset)
	if err != nil {
		return nil, err
	}

	metas, err := DecodeBlockMetas(metaBytes)
	if err != nil {
		return nil, err
	}

	s := &SST{id: id, region: reg, metas: metas, metaOffset: metaOffset}
	if len(metas) > 0 {
		s.firstKey = metas[0].FirstKey
		s.lastKey = metas[len(metas)-1].LastKey
	}
	return s, nil
}

// CreateWithMetaOnly constructs a logical SST handle containing only
// envelope metadata — no region is attached, so ReadBlock/FindBlockIdx
// cannot be called. Intended for index listings that only need the id,
// size, and key range (spec.md §4.E).
func CreateWithMetaOnly(id uint64, fileSize int64, first, last []byte) *SST {
	return &SST{id: id, firstKey: first, lastKey: last, metaOffset: fileSize}
}

// ReadBlock reads and decodes the block at idx, verifying its trailing
// 4-byte hash.
func (s *SST) ReadBlock(idx int) (*Block, error) {
	if idx < 0 || idx >= len(s.metas) {
		return nil, errors.Wrapf(base.ErrOutOfRange, "block index %d out of range [0,%d)", idx, len(s.metas))
	}

	start := int64(s.metas[idx].Offset)
	var end int64
	if idx+1 < len(s.metas) {
		end = int64(s.metas[idx+1].Offset)
	} else {
		end = s.metaOffset
	}

	raw, err := s.region.Read(start, end-start)
	if err != nil {
		return nil, err
	}
	return DecodeBlock(raw, true)
}

// FindBlockIdx binary-searches the meta vector for the block that could
// contain key: k < first_key -> go left, k > last_key -> go right, else
// return idx. Fails with base.ErrOutOfRange if key falls outside
// [FirstKey(), LastKey()].
func (s *SST) FindBlockIdx(key []byte) (int, error) {
	if len(s.metas) == 0 {
		return 0, errors.Wrapf(base.ErrOutOfRange, "sst %d has no blocks", s.id)
	}
	if base.Compare(key, s.firstKey) < 0 || base.Compare(key, s.lastKey) > 0 {
		return 0, errors.Wrapf(base.ErrOutOfRange, "key outside sst %d range", s.id)
	}

	lo, hi := 0, len(s.metas)-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		m := s.metas[mid]
		switch {
		case base.Compare(key, m.FirstKey) < 0:
			hi = mid - 1
		case base.Compare(key, m.LastKey) > 0:
			lo = mid + 1
		default:
			return mid, nil
		}
	}
	return lo, nil
}
