// File: pool/ringpool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bounded MPMC recycler using sequence numbers to fix race conditions.
// Based on the pattern by Dmitry Vyukov for MPMC queues.

package pool

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/momentics/smr/api"
)

// Ensure compile-time interface compliance.
var _ api.NodePool[int] = (*RingPool[int])(nil)

// RingPool keeps up to a fixed number of reclaimed nodes for reuse.
// Get falls back to heap allocation when the ring is empty; Put drops the
// node for the GC when the ring is full. Safe for concurrent use by any
// number of threads.
type RingPool[T any] struct {
	head  uint64
	_     cpu.CacheLinePad
	tail  uint64
	_     cpu.CacheLinePad
	mask  uint64
	cells []cell[T]
}

type cell[T any] struct {
	sequence atomic.Uint64
	node     *T
}

// NewRingPool creates a pool with capacity rounded up to a power of two.
func NewRingPool[T any](capacity int) *RingPool[T] {
	if capacity < 2 {
		capacity = 2
	}
	size := 1
	for size < capacity {
		size <<= 1
	}

	p := &RingPool[T]{
		mask:  uint64(size - 1),
		cells: make([]cell[T], size),
	}
	for i := range p.cells {
		p.cells[i].sequence.Store(uint64(i))
	}
	return p
}

// Get returns a recycled node, or a fresh allocation when the ring is
// empty. Callers must fully reinitialize the node before use.
func (p *RingPool[T]) Get() *T {
	for {
		head := atomic.LoadUint64(&p.head)
		index := head & p.mask
		c := &p.cells[index]
		seq := c.sequence.Load()
		dif := int64(seq) - int64(head+1)

		if dif == 0 {
			if atomic.CompareAndSwapUint64(&p.head, head, head+1) {
				n := c.node
				c.node = nil
				c.sequence.Store(head + p.mask + 1)
				return n
			}
		} else if dif < 0 {
			return new(T) // empty
		} else {
			// head moved, retry
		}
	}
}

// Put offers a node back to the ring; drops it when the ring is full.
func (p *RingPool[T]) Put(n *T) {
	for {
		tail := atomic.LoadUint64(&p.tail)
		index := tail & p.mask
		c := &p.cells[index]
		seq := c.sequence.Load()
		dif := int64(seq) - int64(tail)

		if dif == 0 {
			if atomic.CompareAndSwapUint64(&p.tail, tail, tail+1) {
				c.node = n
				c.sequence.Store(tail + 1)
				return
			}
		} else if dif < 0 {
			return // full, let the GC take it
		} else {
			// tail moved, retry
		}
	}
}

// Len returns the number of nodes currently pooled.
func (p *RingPool[T]) Len() int {
	head := atomic.LoadUint64(&p.head)
	tail := atomic.LoadUint64(&p.tail)
	return int(tail - head)
}

// Cap returns the fixed ring capacity.
func (p *RingPool[T]) Cap() int {
	return len(p.cells)
}
