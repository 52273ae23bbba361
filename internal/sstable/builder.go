package sstable

import (
	"encoding/binary"

	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/cockroachdb/errors"
	"github.com/devlibx/lsmgo/internal/base"
	"github.com/devlibx/lsmgo/region"
)

// Builder accumulates a stream of sorted key/value pairs into blocks and
// finally serializes them into an immutable SST file (spec.md §4.E).
type Builder struct {
	blockSize int
	block     *Block

	buf   []byte
	metas []BlockMeta

	firstKey []byte
	lastKey  []byte

	anyEntry bool
}

// NewBuilder returns a Builder that rotates to a new block once the
// current one would exceed blockSize.
func NewBuilder(blockSize int) *Builder {
	return &Builder{
		blockSize: blockSize,
		block:     NewBlock(blockSize),
	}
}

// Add appends (key, value). Keys are assumed to arrive non-decreasing.
// If the current block rejects the entry, the block is finished and a
// fresh one receives the entry instead.
func (bld *Builder) Add(key, value []byte) error {
	if err := base.CheckRecordSize(key, value); err != nil {
		return err
	}

	if !bld.anyEntry {
		bld.firstKey = append([]byte(nil), key...)
		bld.anyEntry = true
	}

	if bld.block.Add(key, value) {
		bld.lastKey = append([]byte(nil), key...)
		return nil
	}

	bld.finishBlock()

	bld.block.Add(key, value)
	bld.firstKey = append([]byte(nil), key...)
	bld.lastKey = append([]byte(nil), key...)
	return nil
}

// finishBlock encodes the current block, appends it (plus its 4-byte
// hash) to the builder's byte buffer, records a BlockMeta for it, and
// starts a fresh empty block.
func (bld *Builder) finishBlock() {
	encoded := bld.block.Encode()

	bld.metas = append(bld.metas, BlockMeta{
		Offset:   uint32(len(bld.buf)),
		FirstKey: bld.firstKey,
		LastKey:  bld.lastKey,
	})

	bld.buf = append(bld.buf, encoded...)
	var h [4]byte
	binary.LittleEndian.PutUint32(h[:], hash32(encoded))
	bld.buf = append(bld.buf, h[:]...)

	bld.block = NewBlock(bld.blockSize)
}

// Build finishes any pending block, serializes the meta directory and
// trailer, writes the file atomically via a local region, and returns an
// SST view consistent with the just-written bytes. It fails with
// base.ErrEmptyBuild if no entry was ever added.
func (bld *Builder) Build(id uint64, path string) (*SST, error) {
	content, metas, metaOffset, err := bld.finish(id)
	if err != nil {
		return nil, err
	}
	reg, err := region.CreateAndWrite(path, content)
	if err != nil {
		return nil, err
	}
	return newSST(id, reg, metas, metaOffset), nil
}

// BuildCloud behaves exactly like Build, except the resulting file is
// also best-effort mirrored to S3 via region.CreateAndWriteS3 — the path
// an engine takes when Options.CloudBackend is configured
// (SPEC_FULL.md's pluggable persistent byte region backends).
func (bld *Builder) BuildCloud(id uint64, path string, mirror region.CloudMirror, uploader *s3manager.Uploader) (*SST, error) {
	content, metas, metaOffset, err := bld.finish(id)
	if err != nil {
		return nil, err
	}
	reg, err := region.CreateAndWriteS3(path, content, mirror, uploader)
	if err != nil {
		return nil, err
	}
	return newSST(id, reg, metas, metaOffset), nil
}

// finish closes out any pending block and serializes the meta directory
// and trailer, returning the complete file content ready to hand to a
// region backend.
func (bld *Builder) finish(id uint64) (content []byte, metas []BlockMeta, metaOffset uint32, err error) {
	if !bld.block.IsEmpty() {
		bld.finishBlock()
	}
	if len(bld.metas) == 0 {
		return nil, nil, 0, errors.Wrapf(base.ErrEmptyBuild, "sst %d has no entries", id)
	}

	metaOffset = uint32(len(bld.buf))
	metaBytes := EncodeBlockMetas(bld.metas)

	content = make([]byte, 0, len(bld.buf)+len(metaBytes)+4)
	content = append(content, bld.buf...)
	content = append(content, metaBytes...)
	var trailer [4]byte
	binary.LittleEndian.PutUint32(trailer[:], metaOffset)
	content = append(content, trailer[:]...)

	return content, bld.metas, metaOffset, nil
}

func newSST(id uint64, reg region.Region, metas []BlockMeta, metaOffset uint32) *SST {
	return &SST{
		id:         id,
		region:     reg,
		metas:      metas,
		metaOffset: int64(metaOffset),
		firstKey:   metas[0].FirstKey,
		lastKey:    metas[len(metas)-1].LastKey,
	}
}
