// File: core/smr/stats.go
// Author: momentics <momentics@gmail.com>
//
// Atomic reclamation counters. Sampled by tests and published to the
// control metrics registry through probes; never read on hot paths.

package smr

import "sync/atomic"

// Stats is a point-in-time snapshot of registry activity.
type Stats struct {
	Retired    uint64 // nodes handed to Retire
	Released   uint64 // nodes proven unreachable and released
	Scans      uint64 // full announcement-slot scans performed
	MaxBacklog uint64 // high-water mark of any per-thread retirement list
}

type counters struct {
	retired  atomic.Uint64
	released atomic.Uint64
	scans    atomic.Uint64
	backlog  atomic.Uint64
}

func (c *counters) observeBacklog(n uint64) {
	for {
		cur := c.backlog.Load()
		if n <= cur || c.backlog.CompareAndSwap(cur, n) {
			return
		}
	}
}

func (c *counters) snapshot() Stats {
	return Stats{
		Retired:    c.retired.Load(),
		Released:   c.released.Load(),
		Scans:      c.scans.Load(),
		MaxBacklog: c.backlog.Load(),
	}
}
