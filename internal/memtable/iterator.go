package memtable

import (
	"container/heap"

	"github.com/devlibx/lsmgo/internal/base"
	"github.com/devlibx/lsmgo/internal/skiplist"
)

// heapItem is one generation's current entry, tagged with its generation
// index g (0 = active, 1..M = frozen newest-to-oldest). Among equal keys
// the smallest g wins, since it is the newest generation.
type heapItem struct {
	key, value []byte
	gen        int
	it         *skiplist.Iterator
}

type itemHeap []*heapItem

func (h itemHeap) Len() int { return len(h) }
func (h itemHeap) Less(i, j int) bool {
	if c := base.Compare(h[i].key, h[j].key); c != 0 {
		return c < 0
	}
	return h[i].gen < h[j].gen
}
func (h itemHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *itemHeap) Push(x any)   { *h = append(*h, x.(*heapItem)) }
func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Iterator is the memtable's k-way ordered merge across the active and
// all frozen skiplists. It presents a strictly increasing, tombstone-free
// key stream with last-writer-wins values (spec.md §4.G).
type Iterator struct {
	h          itemHeap
	iters      []*skiplist.Iterator
	key, value []byte
	end        bool
}

func newIterator(gens []*skiplist.List) *Iterator {
	it := &Iterator{iters: make([]*skiplist.Iterator, len(gens))}
	for g, list := range gens {
		sit := list.NewIterator()
		it.iters[g] = sit
		if !sit.IsEnd() {
			heap.Push(&it.h, &heapItem{key: sit.Key(), value: sit.Value(), gen: g, it: sit})
		}
	}
	it.skipTombstoneCluster()
	it.load()
	return it
}

// load reads the current winning key/value off the heap's top, or marks
// end if the heap is empty.
func (it *Iterator) load() {
	if it.h.Len() == 0 {
		it.end = true
		return
	}
	top := it.h[0]
	it.key, it.value = top.key, top.value
	it.end = false
}

// popCluster pops every heap item whose key equals key, advancing each
// popped generation's iterator and re-pushing it if it still has data.
func (it *Iterator) popCluster(key []byte) {
	for it.h.Len() > 0 && base.Compare(it.h[0].key, key) == 0 {
		top := heap.Pop(&it.h).(*heapItem)
		top.it.Advance()
		if !top.it.IsEnd() {
			heap.Push(&it.h, &heapItem{key: top.it.Key(), value: top.it.Value(), gen: top.gen, it: top.it})
		}
	}
}

// skipTombstoneCluster repeatedly pops key-clusters whose winning value
// is an empty-value tombstone, so the heap's top always points at a live
// key once this returns (or is empty).
func (it *Iterator) skipTombstoneCluster() {
	for it.h.Len() > 0 && base.IsTombstone(it.h[0].value) {
		it.popCluster(it.h[0].key)
	}
}

// IsEnd reports whether every generation has been exhausted.
func (it *Iterator) IsEnd() bool { return it.end }

// Key returns the current winning key.
func (it *Iterator) Key() []byte {
	if it.end {
		panic(base.ErrInvalidIterator)
	}
	return it.key
}

// Value returns the current winning (non-tombstone) value.
func (it *Iterator) Value() []byte {
	if it.end {
		panic(base.ErrInvalidIterator)
	}
	return it.value
}

// Advance pops the current key's full cluster across every generation
// that held it, then skips any newly-exposed tombstone clusters.
func (it *Iterator) Advance() {
	if it.end {
		return
	}
	it.popCluster(it.key)
	it.skipTombstoneCluster()
	it.load()
}

// Close releases every generation iterator's underlying skiplist lock.
func (it *Iterator) Close() error {
	for _, sit := range it.iters {
		sit.Close()
	}
	return nil
}
