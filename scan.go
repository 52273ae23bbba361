package lsm

import (
	"github.com/devlibx/lsmgo/internal/base"
	"github.com/devlibx/lsmgo/internal/merge"
)

// ScanIterator walks the ordered union of the memtable and every L0
// table over a caller-supplied [lo, hi) range, honoring last-writer-wins
// (SPEC_FULL.md's supplemented DB.Scan, built from spec.md §4.G's full
// merge iterator).
type ScanIterator struct {
	merged *merge.Iterator
	hi     []byte
	done   bool
}

// IsEnd reports whether the scan has reached hi or exhausted every
// source.
func (s *ScanIterator) IsEnd() bool {
	if s.done || s.merged.IsEnd() {
		return true
	}
	if s.hi != nil && base.Compare(s.merged.Key(), s.hi) >= 0 {
		return true
	}
	return false
}

// Key returns the current entry's key. Deref on an end iterator (past hi,
// exhausted, or closed) panics with base.ErrInvalidIterator.
func (s *ScanIterator) Key() []byte {
	if s.IsEnd() {
		panic(base.ErrInvalidIterator)
	}
	return s.merged.Key()
}

// Value returns the current entry's value.
func (s *ScanIterator) Value() []byte {
	if s.IsEnd() {
		panic(base.ErrInvalidIterator)
	}
	return s.merged.Value()
}

// Advance steps to the next entry in range.
func (s *ScanIterator) Advance() {
	if s.IsEnd() {
		return
	}
	s.merged.Advance()
}

// Close releases every source iterator's underlying locks/resources.
func (s *ScanIterator) Close() error {
	s.done = true
	return s.merged.Close()
}
