package region_test

import (
	"path/filepath"
	"testing"

	"github.com/devlibx/lsmgo/region"
	"github.com/stretchr/testify/require"
)

func TestCreateAndWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sst_0")
	data := []byte("hello region world")

	r, err := region.CreateAndWrite(path, data)
	require.NoError(t, err)
	defer r.Close()

	require.EqualValues(t, len(data), r.Size())

	got, err := r.Read(6, 6)
	require.NoError(t, err)
	require.Equal(t, []byte("region"), got)
}

func TestReadOutOfRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sst_0")
	r, err := region.CreateAndWrite(path, []byte("short"))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Read(0, 100)
	require.Error(t, err)
}

func TestOpenExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sst_0")
	data := []byte("persisted bytes")
	r, err := region.CreateAndWrite(path, data)
	require.NoError(t, err)
	r.Close()

	reopened, err := region.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Read(0, int64(len(data)))
	require.NoError(t, err)
	require.Equal(t, data, got)
}
