package fpcache

import (
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
)

// Defaults for Options.
const (
	DefaultMaxEntries     = 50
	DefaultMaxMemoryBytes = 100 << 20
	DefaultMemoryCeiling  = 1 << 30
	DefaultTTL            = 30 * time.Minute
	DefaultSweepInterval  = time.Minute
)

// bytesPerSourceByte scales source length into an estimate of the memory
// held by an entry: the source itself plus its tree.
const bytesPerSourceByte = 4

// entryOverhead is the fixed estimate added per entry.
const entryOverhead = 512

// MemoryProbe reports the memory currently used by the process, in bytes.
type MemoryProbe func() uint64

// Options configures a Cache. Zero fields select the defaults.
type Options struct {
	// MaxEntries is the entry count above which the least recently used
	// entries are evicted.
	MaxEntries int

	// MaxMemoryBytes bounds the summed size estimate of all entries.
	MaxMemoryBytes int64

	// MemoryCeiling is the process memory above which half of the cache is
	// evicted in one pass. Zero selects DefaultMemoryCeiling; a negative
	// value disables the check.
	MemoryCeiling int64

	// TTL is how long an entry lives after it is stored.
	TTL time.Duration

	// SweepInterval is the minimum time between expiry sweeps.
	SweepInterval time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Memory reports process memory. Defaults to the Go heap in use.
	Memory MemoryProbe

	// Logger receives debug output about evictions and sweeps.
	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxEntries <= 0 {
		o.MaxEntries = DefaultMaxEntries
	}
	if o.MaxMemoryBytes <= 0 {
		o.MaxMemoryBytes = DefaultMaxMemoryBytes
	}
	if o.MemoryCeiling == 0 {
		o.MemoryCeiling = DefaultMemoryCeiling
	}
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = DefaultSweepInterval
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Memory == nil {
		o.Memory = heapInUse
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

func heapInUse() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.HeapInuse
}

// EstimateSize returns the size estimate charged against MaxMemoryBytes for
// a source text.
func EstimateSize(source string) int64 {
	return int64(len(source))*bytesPerSourceByte + entryOverhead
}
