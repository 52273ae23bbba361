// Package region implements the persistent byte region contract spec.md
// §4.A asks the engine's storage collaborator to provide: open a named
// byte region, read an exact (offset, length) slice, atomically
// create-and-write a named byte region, and flush to durable media.
//
// The engine never talks to the filesystem directly; internal/sstable
// only ever sees the Region interface, so a region.LocalRegion (the
// default, memory-mapped) and a region.S3Region (an optional durability
// mirror, see s3region.go) are interchangeable.
package region

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/devlibx/lsmgo/internal/base"
	"github.com/google/uuid"
	"golang.org/x/exp/mmap"
	"golang.org/x/sys/unix"
)

// Region is a named, offset-addressed byte range backed by durable
// storage. Implementations must guarantee that Read is consistent with
// the bytes passed to CreateAndWrite once it returns successfully.
type Region interface {
	// Size returns the region's total length in bytes.
	Size() int64
	// Read returns a copy of the half-open byte range
	// [offset, offset+length). It fails with base.ErrOutOfRange if
	// offset+length exceeds Size().
	Read(offset, length int64) ([]byte, error)
	// Close releases any OS resources (file descriptors, mappings) held
	// by the region.
	Close() error
}

// LocalRegion is the default Region implementation: a local file opened
// for zero-copy reads via golang.org/x/exp/mmap, created durably via
// golang.org/x/sys/unix syscalls. Grounded in
// _examples/mattkeenan-zerocopyskiplist's use of golang.org/x/sys/unix to
// drive pwrite/pread/mmap against a backing file.
type LocalRegion struct {
	path   string
	reader *mmap.ReaderAt
}

// CreateAndWrite creates a new file at path containing exactly len(data)
// bytes, durably syncs it, and returns a Region opened for reading. The
// data is first written to a uuid-suffixed temporary file in the same
// directory and renamed into place, so a crash mid-write never leaves a
// partially-written file visible under path (the "atomically" in
// spec.md §4.A's contract).
func CreateAndWrite(path string, data []byte) (*LocalRegion, error) {
	tmp := path + ".tmp-" + uuid.NewString()

	fd, err := unix.Open(tmp, unix.O_CREAT|unix.O_EXCL|unix.O_RDWR, 0o644)
	if err != nil {
		return nil, errors.Wrapf(base.ErrIO, "create %s: %v", tmp, err)
	}

	if len(data) > 0 {
		if _, err := unix.Write(fd, data); err != nil {
			unix.Close(fd)
			os.Remove(tmp)
			return nil, errors.Wrapf(base.ErrIO, "write %s: %v", tmp, err)
		}
	}
	if err := unix.Fsync(fd); err != nil {
		unix.Close(fd)
		os.Remove(tmp)
		return nil, errors.Wrapf(base.ErrIO, "fsync %s: %v", tmp, err)
	}
	if err := unix.Close(fd); err != nil {
		os.Remove(tmp)
		return nil, errors.Wrapf(base.ErrIO, "close %s: %v", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return nil, errors.Wrapf(base.ErrIO, "rename %s to %s: %v", tmp, path, err)
	}

	return Open(path)
}

// Open opens an existing file at path for reading, recording its size.
func Open(path string) (*LocalRegion, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, errors.Wrapf(base.ErrIO, "open %s: %v", path, err)
	}
	return &LocalRegion{path: path, reader: r}, nil
}

// Size returns the file's length in bytes.
func (r *LocalRegion) Size() int64 {
	return int64(r.reader.Len())
}

// Read returns a copy of the half-open range [offset, offset+length).
func (r *LocalRegion) Read(offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > r.Size() {
		return nil, errors.Wrapf(base.ErrOutOfRange,
			"read [%d,%d) exceeds region size %d", offset, offset+length, r.Size())
	}
	buf := make([]byte, length)
	if _, err := r.reader.ReadAt(buf, offset); err != nil {
		return nil, errors.Wrapf(base.ErrIO, "read %s: %v", r.path, err)
	}
	return buf, nil
}

// Close releases the underlying memory mapping.
func (r *LocalRegion) Close() error {
	return r.reader.Close()
}

// Path returns the filesystem path backing this region, used by
// region.S3Region to mirror the same bytes to a secondary store.
func (r *LocalRegion) Path() string {
	return r.path
}
