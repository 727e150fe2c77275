// File: core/queue/queue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Michael-Scott queue over a reclamation registry. The enqueue/dequeue
// algorithms follow the 1996 PODC paper; every shared pointer is protected
// through the registry before it is dereferenced and the old head is
// retired after a winning head CAS.

package queue

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/momentics/smr/api"
	"github.com/momentics/smr/core/smr"
	"github.com/momentics/smr/pool"
)

// Two hazard indices: head and tail reuse slot 0 (an operation never needs
// both at once), the successor uses slot 1.
const (
	hpHeadTail = 0
	hpNext     = 1
	slotCount  = 2
)

type node[T any] struct {
	item *T
	smr.EraStamp
	next atomic.Pointer[node[T]]
}

// registry is the widened view of api.Reclaimer both variants satisfy.
type registry[T any] interface {
	api.Reclaimer[node[T]]
	Snapshot() smr.Stats
	DumpState() map[string]any
	Flush(tid int)
}

// Queue is a lock-free multi-producer multi-consumer FIFO.
//
// All operations take the caller's thread id in [0, maxThreads); ids index
// the registry's per-thread state and must be unique per concurrent thread.
type Queue[T any] struct {
	head atomic.Pointer[node[T]]
	_    cpu.CacheLinePad
	tail atomic.Pointer[node[T]]
	_    cpu.CacheLinePad

	rec   registry[T]
	nodes api.NodePool[node[T]]
}

// New creates a queue sized for maxThreads concurrent threads.
func New[T any](maxThreads int, opts ...Option) *Queue[T] {
	var cfg options
	for _, o := range opts {
		o(&cfg)
	}

	q := &Queue[T]{}

	var recOpts []smr.Option[node[T]]
	if cfg.threshold > 0 {
		recOpts = append(recOpts, smr.WithRetireThreshold[node[T]](cfg.threshold))
	}
	if cfg.recycle {
		if cfg.poolCap > 0 {
			q.nodes = pool.NewRingPool[node[T]](cfg.poolCap)
		} else {
			q.nodes = pool.NewSyncPool[node[T]]()
		}
		p := q.nodes
		recOpts = append(recOpts, smr.WithRelease[node[T]](func(n *node[T]) {
			n.item = nil
			p.Put(n)
		}))
	}

	switch cfg.strategy {
	case api.StrategyHazardEras:
		q.rec = smr.NewHazardEras[node[T], *node[T]](slotCount, maxThreads, recOpts...)
	default:
		q.rec = smr.NewHazardPointers[node[T]](slotCount, maxThreads, recOpts...)
	}

	sentinel := q.alloc(nil)
	q.head.Store(sentinel)
	q.tail.Store(sentinel)
	return q
}

func (q *Queue[T]) alloc(item *T) *node[T] {
	var n *node[T]
	if q.nodes != nil {
		n = q.nodes.Get()
		n.next.Store(nil)
	} else {
		n = new(node[T])
	}
	n.item = item
	n.Stamp().Reset(q.rec.Era())
	return n
}

// Enqueue appends item. Nil items are rejected: nil is the internal
// "no successor yet" marker.
func (q *Queue[T]) Enqueue(item *T, tid int) error {
	if item == nil {
		return api.ErrInvalidArgument
	}
	n := q.alloc(item)
	for {
		ltail := q.rec.ProtectPtr(hpHeadTail, q.tail.Load(), tid)
		if ltail != q.tail.Load() {
			continue
		}
		lnext := ltail.next.Load()
		if lnext == nil {
			// ltail looks like the last node: link here, then swing tail.
			if ltail.next.CompareAndSwap(nil, n) {
				q.tail.CompareAndSwap(ltail, n)
				q.rec.Clear(tid)
				return nil
			}
		} else {
			// Tail is lagging, help advance it.
			q.tail.CompareAndSwap(ltail, lnext)
		}
	}
}

// Dequeue removes and returns the oldest item, or nil when the queue is
// empty. The node that held the returned item stays linked as the new
// sentinel; the previous sentinel is retired.
func (q *Queue[T]) Dequeue(tid int) *T {
	lhead := q.rec.Protect(hpHeadTail, &q.head, tid)
	for lhead != q.tail.Load() {
		lnext := q.rec.Protect(hpNext, &lhead.next, tid)
		if q.head.CompareAndSwap(lhead, lnext) {
			// Read the item while lnext is still protected: another thread
			// may retire it the moment our slots are cleared.
			item := lnext.item
			q.rec.Clear(tid)
			q.rec.Retire(lhead, tid)
			return item
		}
		lhead = q.rec.Protect(hpHeadTail, &q.head, tid)
	}
	q.rec.Clear(tid)
	return nil
}

// Drain dequeues until empty and returns the remaining items in order,
// then flushes tid's retirement backlog. Quiescent-state teardown helper;
// safe to run concurrently but the returned prefix is only the items this
// caller won.
func (q *Queue[T]) Drain(tid int) []*T {
	var items []*T
	for {
		item := q.Dequeue(tid)
		if item == nil {
			break
		}
		items = append(items, item)
	}
	q.rec.Flush(tid)
	return items
}

// Stats returns the registry's reclamation counters.
func (q *Queue[T]) Stats() smr.Stats { return q.rec.Snapshot() }

// DumpState emits registry diagnostics for debug probes.
func (q *Queue[T]) DumpState() map[string]any { return q.rec.DumpState() }
