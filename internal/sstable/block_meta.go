package sstable

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/devlibx/lsmgo/internal/base"
)

// BlockMeta describes one serialized block within an SST file: its byte
// offset and the first/last keys it contains (spec.md §3/§4.D).
type BlockMeta struct {
	Offset   uint32
	FirstKey []byte
	LastKey  []byte
}

// EncodeBlockMetas serializes a meta vector as
// u32 count · entry* · u32 hash, where each entry is
// u32 offset · u16 first_key_len · first_key · u16 last_key_len · last_key
// and the hash covers the entries region only (spec.md §4.D/§6).
func EncodeBlockMetas(metas []BlockMeta) []byte {
	size := 4
	for _, m := range metas {
		size += 4 + 2 + len(m.FirstKey) + 2 + len(m.LastKey)
	}
	size += 4

	out := make([]byte, size)
	binary.LittleEndian.PutUint32(out, uint32(len(metas)))
	pos := 4
	entriesStart := pos
	for _, m := range metas {
		binary.LittleEndian.PutUint32(out[pos:], m.Offset)
		pos += 4
		binary.LittleEndian.PutUint16(out[pos:], uint16(len(m.FirstKey)))
		pos += 2
		pos += copy(out[pos:], m.FirstKey)
		binary.LittleEndian.PutUint16(out[pos:], uint16(len(m.LastKey)))
		pos += 2
		pos += copy(out[pos:], m.LastKey)
	}
	entriesEnd := pos
	binary.LittleEndian.PutUint32(out[pos:], hash32(out[entriesStart:entriesEnd]))
	return out
}

// DecodeBlockMetas parses a meta vector produced by EncodeBlockMetas,
// rejecting short input or a hash mismatch with base.ErrFormat.
func DecodeBlockMetas(b []byte) ([]BlockMeta, error) {
	if len(b) < 8 {
		return nil, errors.Wrapf(base.ErrFormat, "block-meta directory too small: %d bytes", len(b))
	}

	count := int(binary.LittleEndian.Uint32(b))
	pos := 4
	entriesStart := pos

	metas := make([]BlockMeta, 0, count)
	for i := 0; i < count; i++ {
		if pos+4+2 > len(b) {
			return nil, errors.Wrapf(base.ErrFormat, "block-meta directory truncated at entry %d", i)
		}
		offset := binary.LittleEndian.Uint32(b[pos:])
		pos += 4
		firstLen := int(binary.LittleEndian.Uint16(b[pos:]))
		pos += 2
		if pos+firstLen+2 > len(b) {
			return nil, errors.Wrapf(base.ErrFormat, "block-meta directory truncated at entry %d first_key", i)
		}
		firstKey := append([]byte(nil), b[pos:pos+firstLen]...)
		pos += firstLen
		lastLen := int(binary.LittleEndian.Uint16(b[pos:]))
		pos += 2
		if pos+lastLen > len(b) {
			return nil, errors.Wrapf(base.ErrFormat, "block-meta directory truncated at entry %d last_key", i)
		}
		lastKey := append([]byte(nil), b[pos:pos+lastLen]...)
		pos += lastLen

		metas = append(metas, BlockMeta{Offset: offset, FirstKey: firstKey, LastKey: lastKey})
	}
	entriesEnd := pos

	if pos+4 > len(b) {
		return nil, errors.Wrapf(base.ErrFormat, "block-meta directory missing trailing hash")
	}
	stored := binary.LittleEndian.Uint32(b[pos:])
	computed := hash32(b[entriesStart:entriesEnd])
	if stored != computed {
		return nil, errors.Wrapf(base.ErrFormat, "block-meta hash mismatch: stored %08x computed %08x", stored, computed)
	}

	return metas, nil
}
