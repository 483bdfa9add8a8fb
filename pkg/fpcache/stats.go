package fpcache

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries         int    `json:"entries" yaml:"entries"`
	Bytes           int64  `json:"bytes" yaml:"bytes"`
	Hits            uint64 `json:"hits" yaml:"hits"`
	Misses          uint64 `json:"misses" yaml:"misses"`
	Evictions       uint64 `json:"evictions" yaml:"evictions"`
	Expirations     uint64 `json:"expirations" yaml:"expirations"`
	Inconsistencies uint64 `json:"inconsistencies" yaml:"inconsistencies"`
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	entries, bytes := len(c.entries), c.bytes
	c.mu.Unlock()

	return Stats{
		Entries:         entries,
		Bytes:           bytes,
		Hits:            c.hits.Load(),
		Misses:          c.misses.Load(),
		Evictions:       c.evictions.Load(),
		Expirations:     c.expirations.Load(),
		Inconsistencies: c.inconsistencies.Load(),
	}
}

// HitRate returns hits over lookups, or zero before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

func (s Stats) String() string {
	return fmt.Sprintf("%d entries (%s), %d hits, %d misses, %d evictions, %d expired",
		s.Entries, humanize.IBytes(uint64(max(s.Bytes, 0))), s.Hits, s.Misses, s.Evictions, s.Expirations)
}
