package sstable

import (
	"testing"

	"github.com/devlibx/lsmgo/internal/base"
	"github.com/stretchr/testify/require"
)

func buildBlock(t *testing.T, entries ...[2]string) *Block {
	t.Helper()
	b := NewBlock(1 << 20)
	for _, e := range entries {
		require.True(t, b.Add([]byte(e[0]), []byte(e[1])))
	}
	return b
}

func TestBlockIteratorOrder(t *testing.T) {
	b := buildBlock(t, [2]string{"a", "1"}, [2]string{"b", "2"}, [2]string{"c", "3"})

	it := NewBlockIterator(b)
	var got [][2]string
	for !it.IsEnd() {
		got = append(got, [2]string{string(it.Key()), string(it.Value())})
		it.Advance()
	}
	require.Equal(t, [][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}}, got)
}

func TestBlockIteratorSeekLandsOnFirstGreaterOrEqual(t *testing.T) {
	b := buildBlock(t, [2]string{"a", "1"}, [2]string{"c", "3"}, [2]string{"e", "5"})

	it := NewBlockIteratorSeek(b, []byte("b"))
	require.Equal(t, "c", string(it.Key()))
}

func TestBlockIteratorSeekPastEndIsEnd(t *testing.T) {
	b := buildBlock(t, [2]string{"a", "1"})
	it := NewBlockIteratorSeek(b, []byte("z"))
	require.True(t, it.IsEnd())
}

func TestNewBlockIteratorAtKeyExactMatch(t *testing.T) {
	b := buildBlock(t, [2]string{"a", "1"}, [2]string{"c", "3"}, [2]string{"e", "5"})

	it, ok := NewBlockIteratorAtKey(b, []byte("c"))
	require.True(t, ok)
	require.Equal(t, "c", string(it.Key()))
	require.Equal(t, "3", string(it.Value()))
}

func TestNewBlockIteratorAtKeyMissing(t *testing.T) {
	b := buildBlock(t, [2]string{"a", "1"}, [2]string{"c", "3"}, [2]string{"e", "5"})

	_, ok := NewBlockIteratorAtKey(b, []byte("b"))
	require.False(t, ok)

	_, ok = NewBlockIteratorAtKey(b, []byte("z"))
	require.False(t, ok)
}

func TestBlockIteratorDerefPastEndPanics(t *testing.T) {
	b := buildBlock(t, [2]string{"a", "1"})
	it := NewBlockIterator(b)
	it.Advance()
	require.True(t, it.IsEnd())

	require.PanicsWithValue(t, base.ErrInvalidIterator, func() { it.Key() })
	require.PanicsWithValue(t, base.ErrInvalidIterator, func() { it.Value() })
}
