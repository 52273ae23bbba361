// Package memtable implements the in-memory tier of the LSM tree: one
// active skiplist plus a FIFO of frozen skiplists, and the merged
// iterator that presents them as a single ordered, tombstone-free stream
// (spec.md §4.F/§4.G).
package memtable

import (
	"sync"

	"github.com/devlibx/lsmgo/internal/base"
	"github.com/devlibx/lsmgo/internal/skiplist"
)

// Memtable owns the active skiplist and the newest-first FIFO of frozen
// generations. A single reader/writer lock guards the active pointer,
// frozen list, and byte counters; the active/frozen skiplists serialize
// their own key-level mutations independently (spec.md §4.F concurrency).
type Memtable struct {
	mu          sync.RWMutex
	active      *skiplist.List
	frozen      []*skiplist.List // newest at index 0
	frozenBytes int
	maxLevel    int
}

// New returns an empty Memtable whose skiplists never exceed maxLevel.
func New(maxLevel int) *Memtable {
	return &Memtable{
		active:   skiplist.New(maxLevel),
		maxLevel: maxLevel,
	}
}

// Put forwards to the active skiplist.
func (m *Memtable) Put(key, value []byte) {
	m.mu.RLock()
	active := m.active
	m.mu.RUnlock()
	active.Put(key, value)
}

// Remove writes a tombstone: (key, empty value).
func (m *Memtable) Remove(key []byte) {
	m.Put(key, nil)
}

// Get consults the active skiplist, then each frozen generation
// newest-to-oldest, stopping at the first decisive result. An empty
// value is a tombstone: present-but-deleted, distinct from absent.
func (m *Memtable) Get(key []byte) (value []byte, deleted bool, found bool) {
	m.mu.RLock()
	active := m.active
	frozen := make([]*skiplist.List, len(m.frozen))
	copy(frozen, m.frozen)
	m.mu.RUnlock()

	if v, ok := active.Get(key); ok {
		return v, base.IsTombstone(v), true
	}
	for _, gen := range frozen {
		if v, ok := gen.Get(key); ok {
			return v, base.IsTombstone(v), true
		}
	}
	return nil, false, false
}

// FreezeCurrent moves the active skiplist to the head of the frozen FIFO
// and installs a fresh empty active skiplist.
func (m *Memtable) FreezeCurrent() {
	m.mu.Lock()
	defer m.mu.Unlock()

	frozen := m.active
	m.frozenBytes += frozen.SizeBytes()
	m.frozen = append([]*skiplist.List{frozen}, m.frozen...)
	m.active = skiplist.New(m.maxLevel)
}

// Clear drops all frozen generations and empties the active skiplist.
func (m *Memtable) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.active.Clear()
	m.frozen = nil
	m.frozenBytes = 0
}

// TotalSize returns active.SizeBytes() + the accumulated frozen byte
// count.
func (m *Memtable) TotalSize() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active.SizeBytes() + m.frozenBytes
}

// generations returns the active skiplist followed by frozen generations
// newest-first, for iterator construction.
func (m *Memtable) generations() []*skiplist.List {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*skiplist.List, 0, 1+len(m.frozen))
	out = append(out, m.active)
	out = append(out, m.frozen...)
	return out
}

// NewIterator returns a k-way merged, tombstone-free iterator across the
// active generation and every frozen generation, newest winning ties
// (spec.md §4.G).
func (m *Memtable) NewIterator() *Iterator {
	gens := m.generations()
	return newIterator(gens)
}
