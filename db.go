// Package lsm implements a small log-structured merge-tree storage
// engine: a concurrent in-memory memtable, size-triggered flush to
// immutable on-disk SSTs, and ordered get/put/remove/scan operations
// over the union of both tiers (spec.md §4.H).
package lsm

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/cockroachdb/errors"
	"github.com/devlibx/lsmgo/internal/base"
	"github.com/devlibx/lsmgo/internal/iterator"
	"github.com/devlibx/lsmgo/internal/memtable"
	"github.com/devlibx/lsmgo/internal/merge"
	"github.com/devlibx/lsmgo/internal/sstable"
	"github.com/devlibx/lsmgo/metrics"
	"github.com/devlibx/lsmgo/region"
	"golang.org/x/sync/singleflight"
)

// DB is an open LSM engine instance rooted at a single data directory. A
// single writer discipline governs Put/Remove/Flush; any number of
// readers may call Get/Scan concurrently (spec.md §5).
type DB struct {
	dataDir string
	opts    Options
	metrics *metrics.Metrics

	mu        sync.RWMutex // guards l0IDs and sstByID
	memtable  *memtable.Memtable
	l0IDs     []uint64 // oldest at index 0, newest at the end
	sstByID   map[uint64]*sstable.SST
	uploader  *s3manager.Uploader
	flushOnce singleflight.Group
}

// Open opens (or creates) an engine rooted at dataDir. An empty
// directory produces a fresh, empty engine; a directory containing
// sst_* files from a prior run is out of scope for this version (crash
// recovery is an explicit Non-goal, spec.md §1) and is not read back.
func Open(dataDir string, opts Options) (*DB, error) {
	opts = opts.EnsureDefaults()

	var uploader *s3manager.Uploader
	if opts.CloudBackend != nil {
		u, err := region.NewCloudMirror(*opts.CloudBackend)
		if err != nil {
			return nil, err
		}
		uploader = u
	}

	db := &DB{
		dataDir:  dataDir,
		opts:     opts,
		metrics:  metrics.New(opts.Registerer),
		memtable: memtable.New(opts.SkiplistMaxLevel),
		sstByID:  make(map[uint64]*sstable.SST),
		uploader: uploader,
	}
	return db, nil
}

// Get returns the value most recently written for key. It consults the
// memtable first, then L0 tables newest-to-oldest, stopping at the first
// decisive result (a present value or a tombstone). It returns
// base.ErrNotFound if no layer has a record for key.
func (db *DB) Get(key []byte) ([]byte, error) {
	start := time.Now()
	defer func() { db.metrics.ObserveGet(time.Since(start)) }()

	if v, deleted, found := db.memtable.Get(key); found {
		if deleted {
			return nil, base.ErrNotFound
		}
		return v, nil
	}

	db.mu.RLock()
	ids := make([]uint64, len(db.l0IDs))
	copy(ids, db.l0IDs)
	ssts := make(map[uint64]*sstable.SST, len(db.sstByID))
	for id, s := range db.sstByID {
		ssts[id] = s
	}
	db.mu.RUnlock()

	for i := len(ids) - 1; i >= 0; i-- {
		s := ssts[ids[i]]
		v, found, err := sstable.Lookup(s, key)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		if base.IsTombstone(v) {
			return nil, base.ErrNotFound
		}
		return v, nil
	}
	return nil, base.ErrNotFound
}

// Put writes (key, value), triggering a flush if the memtable's total
// size now meets or exceeds MemTableSizeLimit. value must be non-empty:
// the empty value is reserved as the tombstone sentinel (spec.md §9's
// noted tombstone/empty-value collision; this engine resolves it by
// rejecting the ambiguous write rather than silently colliding with it).
func (db *DB) Put(key, value []byte) error {
	start := time.Now()
	defer func() { db.metrics.ObservePut(time.Since(start)) }()

	if base.IsTombstone(value) {
		return errors.Wrapf(base.ErrEmptyValueReserved, "put %q", key)
	}
	if err := base.CheckRecordSize(key, value); err != nil {
		return err
	}

	db.memtable.Put(key, value)
	db.recordGauges()

	if int64(db.memtable.TotalSize()) >= db.opts.MemTableSizeLimit {
		if err := db.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// Remove writes a tombstone for key.
func (db *DB) Remove(key []byte) error {
	db.metrics.ObserveRemove()
	if err := base.CheckRecordSize(key, nil); err != nil {
		return err
	}
	db.memtable.Remove(key)
	db.recordGauges()
	return nil
}

// Flush serializes the current memtable into a new L0 SST and installs
// it, then clears the memtable. It is a no-op if the memtable is empty.
// Concurrent Flush calls triggered by concurrent Puts collapse into a
// single underlying flush via singleflight, matching the engine's
// single-writer discipline (spec.md §5) without making every Put block
// on a redundant I/O.
func (db *DB) Flush() error {
	_, err, _ := db.flushOnce.Do("flush", func() (interface{}, error) {
		return nil, db.flushLocked()
	})
	return err
}

func (db *DB) flushLocked() error {
	if db.memtable.TotalSize() == 0 {
		return nil
	}
	start := time.Now()
	defer func() { db.metrics.ObserveFlush(time.Since(start)) }()

	db.mu.Lock()
	id := db.nextSSTIDLocked()
	db.mu.Unlock()

	path := filepath.Join(db.dataDir, fmt.Sprintf("sst_%d", id))
	bld := sstable.NewBuilder(db.opts.BlockSize)

	it := db.memtable.NewIterator()
	for !it.IsEnd() {
		if err := bld.Add(it.Key(), it.Value()); err != nil {
			it.Close()
			return err
		}
		it.Advance()
	}
	it.Close()

	var sst *sstable.SST
	var err error
	if db.opts.CloudBackend != nil {
		sst, err = bld.BuildCloud(id, path, *db.opts.CloudBackend, db.uploader)
	} else {
		sst, err = bld.Build(id, path)
	}
	if err != nil {
		return err
	}

	db.mu.Lock()
	db.sstByID[id] = sst
	db.l0IDs = append(db.l0IDs, id)
	db.mu.Unlock()

	db.memtable.Clear()
	db.recordGauges()
	db.opts.Logger.Infof("lsmgo: flushed memtable to sst_%d (%d blocks)", id, sst.NumBlocks())
	return nil
}

// nextSSTIDLocked returns max(existing L0 id)+1, or 0 if none exist.
// Callers must hold db.mu.
func (db *DB) nextSSTIDLocked() uint64 {
	if len(db.l0IDs) == 0 {
		return 0
	}
	return db.l0IDs[len(db.l0IDs)-1] + 1
}

// Scan returns an ordered, tombstone-free iterator over
// [lo, hi) — the full merge of the memtable and every L0 table, with the
// memtable winning ties (spec.md §4.G's full merge iterator, exposed at
// the engine level as SPEC_FULL.md's supplemented Scan operation). A nil
// hi means unbounded.
func (db *DB) Scan(lo, hi []byte) (*ScanIterator, error) {
	memIt := db.memtable.NewIterator()

	db.mu.RLock()
	ids := make([]uint64, len(db.l0IDs))
	copy(ids, db.l0IDs)
	ssts := make([]*sstable.SST, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		ssts = append(ssts, db.sstByID[ids[i]])
	}
	db.mu.RUnlock()

	sources := []iterator.Iterator{memIt}
	var sstIters []*sstable.Iterator
	for _, s := range ssts {
		if hi != nil && base.Compare(s.FirstKey(), hi) >= 0 {
			continue
		}
		if lo != nil && base.Compare(s.LastKey(), lo) < 0 {
			continue
		}
		sit, err := sstable.NewIterator(s)
		if err != nil {
			memIt.Close()
			for _, prev := range sstIters {
				prev.Close()
			}
			return nil, err
		}
		// Seek to lo only when lo actually falls inside this table;
		// otherwise the whole table is >= lo (per the LastKey filter
		// above) and the iterator's default first-entry position is
		// already correct. A bare Seek(lo) would fail with
		// ErrOutOfRange whenever lo < s.FirstKey().
		if lo != nil && base.Compare(lo, s.FirstKey()) > 0 {
			if err := sit.Seek(lo); err != nil && !errors.Is(err, base.ErrOutOfRange) {
				return nil, err
			}
		}
		sstIters = append(sstIters, sit)
		sources = append(sources, sit)
	}

	if lo != nil {
		for !memIt.IsEnd() && base.Compare(memIt.Key(), lo) < 0 {
			memIt.Advance()
		}
	}

	return &ScanIterator{merged: merge.New(sources), hi: hi}, nil
}

// recordGauges pushes the memtable/L0 gauges to the metrics collector;
// cheap enough to call on every mutating operation.
func (db *DB) recordGauges() {
	db.mu.RLock()
	l0Files := len(db.l0IDs)
	var onDisk int64
	for _, s := range db.sstByID {
		onDisk += s.Size()
	}
	db.mu.RUnlock()
	db.metrics.SetGauges(db.memtable.TotalSize(), l0Files, onDisk)
}

// Stats summarizes the engine's current in-memory and on-disk footprint.
type Stats struct {
	MemtableBytes int
	L0Files       int
	OnDiskBytes   int64
}

// Stats returns a point-in-time snapshot of the engine's size.
func (db *DB) Stats() Stats {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var onDisk int64
	for _, s := range db.sstByID {
		onDisk += s.Size()
	}
	return Stats{
		MemtableBytes: db.memtable.TotalSize(),
		L0Files:       len(db.l0IDs),
		OnDiskBytes:   onDisk,
	}
}

// Close flushes any remaining memtable contents and closes every
// installed SST's region. Unlike the original C++ destructor (which
// swallows a flush failure), Close surfaces it to the caller — spec.md
// §7's noted open question, resolved by SPEC_FULL.md in favor of the
// production-safe variant.
func (db *DB) Close() error {
	if err := db.Flush(); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	var firstErr error
	for _, s := range db.sstByID {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
