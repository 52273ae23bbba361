// Package merge implements the generic k-way ordered merge used by both
// the L0 merge iterator and the engine's full merge iterator (spec.md
// §4.G). Sources are supplied in priority order — index 0 wins ties —
// so the same code serves "newest SST first" and "memtable beats every
// SST" by choosing the source ordering at the call site.
package merge

import (
	"container/heap"

	"github.com/devlibx/lsmgo/internal/base"
	"github.com/devlibx/lsmgo/internal/iterator"
)

type heapItem struct {
	key, value []byte
	priority   int
	it         iterator.Iterator
}

type itemHeap []*heapItem

func (h itemHeap) Len() int { return len(h) }
func (h itemHeap) Less(i, j int) bool {
	if c := base.Compare(h[i].key, h[j].key); c != 0 {
		return c < 0
	}
	return h[i].priority < h[j].priority
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

// Iterator is a k-way ordered merge over a fixed set of sources, with
// last-writer-wins (lowest priority index) tie-breaking and tombstone
// cluster skipping, matching the memtable iterator's contract.
type Iterator struct {
	h          itemHeap
	sources    []iterator.Iterator
	key, value []byte
	end        bool
}

// New builds a merge iterator over sources, where sources[0] has the
// highest priority (wins ties against sources[1], etc). Each source must
// already be positioned at its first entry.
func New(sources []iterator.Iterator) *Iterator {
	it := &Iterator{sources: sources}
	for p, s := range sources {
		if s != nil && !s.IsEnd() {
			heap.Push(&it.h, &heapItem{key: s.Key(), value: s.Value(), priority: p, it: s})
		}
	}
	it.skipTombstoneCluster()
	it.load()
	return it
}

func (it *Iterator) load() {
	if it.h.Len() == 0 {
		it.end = true
		return
	}
	top := it.h[0]
	it.key, it.value = top.key, top.value
	it.end = false
}

func (it *Iterator) popCluster(key []byte) {
	for it.h.Len() > 0 && base.Compare(it.h[0].key, key) == 0 {
		top := heap.Pop(&it.h).(*heapItem)
		top.it.Advance()
		if !top.it.IsEnd() {
			heap.Push(&it.h, &heapItem{key: top.it.Key(), value: top.it.Value(), priority: top.priority, it: top.it})
		}
	}
}

func (it *Iterator) skipTombstoneCluster() {
	for it.h.Len() > 0 && base.IsTombstone(it.h[0].value) {
		it.popCluster(it.h[0].key)
	}
}

// IsEnd reports whether every source has been exhausted.
func (it *Iterator) IsEnd() bool { return it.end }

// Key returns the current winning key.
func (it *Iterator) Key() []byte {
	if it.end {
		panic(base.ErrInvalidIterator)
	}
	return it.key
}

// Value returns the current winning value.
func (it *Iterator) Value() []byte {
	if it.end {
		panic(base.ErrInvalidIterator)
	}
	return it.value
}

// Advance pops the current key's full cluster, then skips any
// newly-exposed tombstone clusters.
func (it *Iterator) Advance() {
	if it.end {
		return
	}
	it.popCluster(it.key)
	it.skipTombstoneCluster()
	it.load()
}

// Close closes every source that implements iterator.Closer.
func (it *Iterator) Close() error {
	var firstErr error
	for _, s := range it.sources {
		if c, ok := s.(iterator.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
