package sstable

import "github.com/cespare/xxhash/v2"

// hash32 is the 32-bit string hash used for the per-block hash (§4.C) and
// the block-meta directory hash (§4.D). spec.md §6 leaves the exact
// function as an open question, noting only that "the reference treats
// values hashed with a 64-bit hash and truncates to 32 bits" and that any
// deterministic choice is acceptable as long as producer and consumer
// agree. We pin it to xxhash's 64-bit sum truncated to 32 bits.
func hash32(b []byte) uint32 {
	return uint32(xxhash.Sum64(b))
}
