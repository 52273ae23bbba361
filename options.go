package lsm

import (
	"github.com/devlibx/lsmgo/region"
	"github.com/prometheus/client_golang/prometheus"
)

// Default configuration constants (spec.md §6).
const (
	DefaultMemTableSizeLimit = 4 << 20 // 4 MiB
	DefaultBlockSize         = 4096
	DefaultSkiplistMaxLevel  = 16
)

// Options configures a DB. The zero value is not ready for use; call
// EnsureDefaults (or pass Options{} to Open, which calls it
// internally), matching the teacher's (cockroachdb/pebble)
// Options.EnsureDefaults convention of a plain struct over functional
// options.
type Options struct {
	// MemTableSizeLimit is the total active+frozen byte size at which a
	// Put triggers a flush (spec.md §4.H's kMemSizeLimit).
	MemTableSizeLimit int64
	// BlockSize is the target SST data block size used by the builder
	// during flush.
	BlockSize int
	// SkiplistMaxLevel bounds the height of every skiplist the memtable
	// constructs.
	SkiplistMaxLevel int
	// Logger receives the engine's diagnostic output. Defaults to a
	// redact-aware wrapper over the standard log package.
	Logger Logger
	// CloudBackend, if non-nil, mirrors every flushed SST to S3 via
	// region.S3Region instead of using a plain region.LocalRegion.
	CloudBackend *region.CloudMirror
	// Registerer, if non-nil, is used to register the engine's
	// Prometheus counters and gauges. A nil Registerer still produces a
	// usable *metrics.Metrics; it is simply never scraped.
	Registerer prometheus.Registerer
}

// EnsureDefaults returns a copy of o with every zero-valued field
// replaced by its default, and Logger populated if absent. It does not
// mutate the receiver.
func (o Options) EnsureDefaults() Options {
	if o.MemTableSizeLimit <= 0 {
		o.MemTableSizeLimit = DefaultMemTableSizeLimit
	}
	if o.BlockSize <= 0 {
		o.BlockSize = DefaultBlockSize
	}
	if o.SkiplistMaxLevel <= 0 {
		o.SkiplistMaxLevel = DefaultSkiplistMaxLevel
	}
	if o.Logger == nil {
		o.Logger = defaultLogger{}
	}
	return o
}
