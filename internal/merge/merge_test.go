package merge_test

import (
	"testing"

	"github.com/devlibx/lsmgo/internal/iterator"
	"github.com/devlibx/lsmgo/internal/merge"
	"github.com/stretchr/testify/require"
)

// sliceIterator is a minimal iterator.Iterator over a fixed slice of
// entries, used to exercise the merge package without pulling in
// skiplist/sstable.
type sliceIterator struct {
	entries [][2]string
	idx     int
}

func (s *sliceIterator) IsEnd() bool   { return s.idx >= len(s.entries) }
func (s *sliceIterator) Key() []byte   { return []byte(s.entries[s.idx][0]) }
func (s *sliceIterator) Value() []byte { return []byte(s.entries[s.idx][1]) }
func (s *sliceIterator) Advance()      { s.idx++ }

func newSlice(entries ...[2]string) *sliceIterator { return &sliceIterator{entries: entries} }

func drain(t *testing.T, it *merge.Iterator) [][2]string {
	t.Helper()
	var got [][2]string
	for !it.IsEnd() {
		got = append(got, [2]string{string(it.Key()), string(it.Value())})
		it.Advance()
	}
	return got
}

func TestMergeNewestWins(t *testing.T) {
	newest := newSlice([2]string{"b", "new"})
	oldest := newSlice([2]string{"a", "1"}, [2]string{"b", "old"}, [2]string{"c", "3"})

	it := merge.New([]iterator.Iterator{newest, oldest})
	got := drain(t, it)
	require.Equal(t, [][2]string{{"a", "1"}, {"b", "new"}, {"c", "3"}}, got)
}

func TestMergeSkipsTombstones(t *testing.T) {
	newest := newSlice([2]string{"a", ""}, [2]string{"c", "new-c"})
	oldest := newSlice([2]string{"a", "1"}, [2]string{"b", "2"}, [2]string{"c", "old-c"})

	it := merge.New([]iterator.Iterator{newest, oldest})
	got := drain(t, it)
	require.Equal(t, [][2]string{{"b", "2"}, {"c", "new-c"}}, got)
}

func TestMergeEmptySources(t *testing.T) {
	it := merge.New(nil)
	require.True(t, it.IsEnd())
}
