package sstable

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockEncodeDecodeRoundTrip(t *testing.T) {
	b := NewBlock(4096)
	require.True(t, b.Add([]byte("key1"), []byte("value1")))
	require.True(t, b.Add([]byte("key2"), []byte("value2")))
	require.True(t, b.Add([]byte("key3"), []byte("value3")))

	encoded := b.Encode()
	require.Equal(t, b.Size(), len(encoded))

	decoded, err := DecodeBlock(encoded, false)
	require.NoError(t, err)
	require.Equal(t, b.NumEntries(), decoded.NumEntries())

	for i := 0; i < b.NumEntries(); i++ {
		wk, wv := b.EntryAt(i)
		gk, gv := decoded.EntryAt(i)
		require.Equal(t, wk, gk)
		require.Equal(t, wv, gv)
	}
}

func TestBlockWithHashRoundTrip(t *testing.T) {
	b := NewBlock(4096)
	b.Add([]byte("a"), []byte("1"))
	b.Add([]byte("b"), []byte("2"))

	encoded := b.Encode()
	hashed := append([]byte(nil), encoded...)
	var h [4]byte
	binary.LittleEndian.PutUint32(h[:], hash32(encoded))
	hashed = append(hashed, h[:]...)

	decoded, err := DecodeBlock(hashed, true)
	require.NoError(t, err)
	require.Equal(t, 2, decoded.NumEntries())

	hashed[0] ^= 0xFF
	_, err = DecodeBlock(hashed, true)
	require.Error(t, err)
}

func TestBlockSpecialBytes(t *testing.T) {
	b := NewBlock(4096)
	require.True(t, b.Add([]byte(""), []byte("")))
	require.True(t, b.Add([]byte("key\x00with\tnull"), []byte("value\rwith\nnull")))

	v, ok := b.GetBinary([]byte(""))
	require.True(t, ok)
	require.Equal(t, []byte(""), v)

	v, ok = b.GetBinary([]byte("key\x00with\tnull"))
	require.True(t, ok)
	require.Equal(t, []byte("value\rwith\nnull"), v)
}

func TestBlockOverflowRejectsWhenNonEmpty(t *testing.T) {
	b := NewBlock(20)
	require.True(t, b.Add([]byte("k0"), []byte("v0")))
	require.False(t, b.Add([]byte("k1"), []byte("v1that-is-long-enough-to-overflow")))
}

func TestBlockFirstEntryAlwaysAdmitted(t *testing.T) {
	b := NewBlock(1)
	require.True(t, b.Add([]byte("very"), []byte("long-value-exceeding-capacity")))
}

func TestBlockGetBinaryMissing(t *testing.T) {
	b := NewBlock(4096)
	b.Add([]byte("a"), []byte("1"))
	_, ok := b.GetBinary([]byte("z"))
	require.False(t, ok)
}

func TestBlockManyEntriesBinarySearch(t *testing.T) {
	b := NewBlock(1 << 20)
	for i := 0; i < 200; i++ {
		k := []byte(fmt.Sprintf("key%04d", i))
		v := []byte(fmt.Sprintf("value%04d", i))
		require.True(t, b.Add(k, v))
	}
	for i := 0; i < 200; i++ {
		v, ok := b.GetBinary([]byte(fmt.Sprintf("key%04d", i)))
		require.True(t, ok)
		require.Equal(t, fmt.Sprintf("value%04d", i), string(v))
	}
}
