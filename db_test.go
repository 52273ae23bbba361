package lsm_test

import (
	"path/filepath"
	"testing"

	lsmgo "github.com/devlibx/lsmgo"
	"github.com/devlibx/lsmgo/internal/base"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T, opts lsmgo.Options) *lsmgo.DB {
	t.Helper()
	db, err := lsmgo.Open(t.TempDir(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPutGetRemove(t *testing.T) {
	db := open(t, lsmgo.Options{})

	require.NoError(t, db.Put([]byte("a"), []byte("1")))
	require.NoError(t, db.Put([]byte("b"), []byte("2")))
	require.NoError(t, db.Remove([]byte("a")))

	_, err := db.Get([]byte("a"))
	require.ErrorIs(t, err, base.ErrNotFound)

	v, err := db.Get([]byte("b"))
	require.NoError(t, err)
	require.Equal(t, "2", string(v))
}

func TestPutRejectsEmptyValue(t *testing.T) {
	db := open(t, lsmgo.Options{})
	err := db.Put([]byte("a"), nil)
	require.ErrorIs(t, err, base.ErrEmptyValueReserved)
}

func TestFlushAndReadAfter(t *testing.T) {
	db := open(t, lsmgo.Options{})
	require.NoError(t, db.Put([]byte("a"), []byte("1")))
	require.NoError(t, db.Flush())

	stats := db.Stats()
	require.Equal(t, 0, stats.MemtableBytes)
	require.Equal(t, 1, stats.L0Files)

	v, err := db.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, "1", string(v))
}

func TestSizeTriggeredFlush(t *testing.T) {
	db := open(t, lsmgo.Options{MemTableSizeLimit: 10})

	require.NoError(t, db.Put([]byte("key1"), []byte("value1"))) // 10 bytes, hits the limit
	stats := db.Stats()
	require.Equal(t, 0, stats.MemtableBytes)
	require.Equal(t, 1, stats.L0Files)

	v, err := db.Get([]byte("key1"))
	require.NoError(t, err)
	require.Equal(t, "value1", string(v))
}

func TestL0ShadowingNewestWins(t *testing.T) {
	db := open(t, lsmgo.Options{})

	require.NoError(t, db.Put([]byte("a"), []byte("old")))
	require.NoError(t, db.Flush())
	require.NoError(t, db.Put([]byte("a"), []byte("new")))
	require.NoError(t, db.Flush())

	v, err := db.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, "new", string(v))
}

func TestMemtableShadowsL0(t *testing.T) {
	db := open(t, lsmgo.Options{})

	require.NoError(t, db.Put([]byte("a"), []byte("on-disk")))
	require.NoError(t, db.Flush())
	require.NoError(t, db.Put([]byte("a"), []byte("in-memory")))

	v, err := db.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, "in-memory", string(v))
}

func TestRemoveAfterFlushShadowsOlderSST(t *testing.T) {
	db := open(t, lsmgo.Options{})

	require.NoError(t, db.Put([]byte("a"), []byte("1")))
	require.NoError(t, db.Flush())
	require.NoError(t, db.Remove([]byte("a")))

	_, err := db.Get([]byte("a"))
	require.ErrorIs(t, err, base.ErrNotFound)
}

func TestScanRange(t *testing.T) {
	db := open(t, lsmgo.Options{})

	require.NoError(t, db.Put([]byte("a"), []byte("1")))
	require.NoError(t, db.Put([]byte("b"), []byte("2")))
	require.NoError(t, db.Put([]byte("c"), []byte("3")))
	require.NoError(t, db.Flush())
	require.NoError(t, db.Put([]byte("d"), []byte("4")))

	it, err := db.Scan([]byte("b"), []byte("d"))
	require.NoError(t, err)
	defer it.Close()

	var got [][2]string
	for !it.IsEnd() {
		got = append(got, [2]string{string(it.Key()), string(it.Value())})
		it.Advance()
	}
	require.Equal(t, [][2]string{{"b", "2"}, {"c", "3"}}, got)
}

func TestScanUnbounded(t *testing.T) {
	db := open(t, lsmgo.Options{})
	require.NoError(t, db.Put([]byte("x"), []byte("1")))
	require.NoError(t, db.Put([]byte("y"), []byte("2")))

	it, err := db.Scan(nil, nil)
	require.NoError(t, err)
	defer it.Close()

	var keys []string
	for !it.IsEnd() {
		keys = append(keys, string(it.Key()))
		it.Advance()
	}
	require.Equal(t, []string{"x", "y"}, keys)
}

func TestCloseFlushesPendingWrites(t *testing.T) {
	dir := t.TempDir()
	db, err := lsmgo.Open(dir, lsmgo.Options{})
	require.NoError(t, err)
	require.NoError(t, db.Put([]byte("a"), []byte("1")))
	require.NoError(t, db.Close())
	require.FileExists(t, filepath.Join(dir, "sst_0"))

	reopened, err := lsmgo.Open(dir, lsmgo.Options{})
	require.NoError(t, err)
	defer reopened.Close()
	// Crash recovery is out of scope: a fresh Open does not read back
	// sst_* files from a prior instance, so the key is not visible here.
	_, err = reopened.Get([]byte("a"))
	require.ErrorIs(t, err, base.ErrNotFound)
}
