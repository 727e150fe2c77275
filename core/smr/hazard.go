// File: core/smr/hazard.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Hazard-pointer registry: per-thread announcement slots plus per-thread
// retirement lists. A retired node is released only once a full slot scan
// proves no thread announces it.

package smr

import (
	"sync/atomic"

	"github.com/eapache/queue"
	"golang.org/x/sys/cpu"

	"github.com/momentics/smr/api"
)

// Compile-time interface compliance.
var _ api.Reclaimer[int] = (*HazardPointers[int])(nil)

// hpSlot is one (thread, index) announcement. Padded so scanning threads
// reading a slot never share a cache line with another thread's writes.
type hpSlot[T any] struct {
	ptr atomic.Pointer[T]
	_   cpu.CacheLinePad
}

// retireShard is a single-owner retirement list. Only the owning thread
// pushes, scans and releases; no synchronization needed beyond padding.
type retireShard struct {
	list *queue.Queue
	_    cpu.CacheLinePad
}

// HazardPointers is the identity-based reclamation registry.
//
// Protect/ProtectPtr/Clear are wait-free population-oblivious; Retire is
// wait-free bounded by maxThreads*maxSlots per listed node.
type HazardPointers[T any] struct {
	maxSlots   int
	maxThreads int
	threshold  int
	release    func(*T)

	slots   []hpSlot[T] // row-major: slots[tid*maxSlots+index]
	retired []retireShard

	counters
}

// NewHazardPointers creates a registry with maxSlots announcement slots for
// each of maxThreads threads. Non-positive arguments fall back to the
// package defaults.
func NewHazardPointers[T any](maxSlots, maxThreads int, opts ...Option[T]) *HazardPointers[T] {
	if maxSlots <= 0 {
		maxSlots = MaxSlots
	}
	if maxThreads <= 0 {
		maxThreads = MaxThreads
	}
	cfg := applyOptions(opts)
	h := &HazardPointers[T]{
		maxSlots:   maxSlots,
		maxThreads: maxThreads,
		threshold:  cfg.threshold,
		release:    cfg.release,
		slots:      make([]hpSlot[T], maxSlots*maxThreads),
		retired:    make([]retireShard, maxThreads),
	}
	for i := range h.retired {
		h.retired[i].list = queue.New()
	}
	return h
}

func (h *HazardPointers[T]) slot(tid, index int) *atomic.Pointer[T] {
	return &h.slots[tid*h.maxSlots+index].ptr
}

// Protect announces the value read from src and re-reads src until the
// announced value is still the published one. The re-read is mandatory:
// the announcement store is not atomic with the load, so a reclaimer could
// release the node in the gap.
func (h *HazardPointers[T]) Protect(index int, src *atomic.Pointer[T], tid int) *T {
	s := h.slot(tid, index)
	var announced *T
	for {
		ptr := src.Load()
		if ptr == announced {
			return ptr
		}
		s.Store(ptr)
		announced = ptr
	}
}

// ProtectPtr announces a pointer the caller already holds. The caller must
// revalidate the source location afterwards; see api.Reclaimer.
func (h *HazardPointers[T]) ProtectPtr(index int, ptr *T, tid int) *T {
	h.slot(tid, index).Store(ptr)
	return ptr
}

// Clear resets all of tid's announcement slots.
func (h *HazardPointers[T]) Clear(tid int) {
	base := tid * h.maxSlots
	for i := 0; i < h.maxSlots; i++ {
		h.slots[base+i].ptr.Store(nil)
	}
}

// Era reports 0: hazard pointers have no era clock.
func (h *HazardPointers[T]) Era() uint64 { return 0 }

// Retire appends ptr to tid's retirement list and, once the list reaches
// the threshold R, scans every announcement slot and releases each listed
// node no thread announces. Double retire of the same node is a caller bug
// and undefined.
func (h *HazardPointers[T]) Retire(ptr *T, tid int) {
	r := h.retired[tid].list
	r.Add(ptr)
	h.counters.retired.Add(1)
	h.observeBacklog(uint64(r.Length()))
	if r.Length() < h.threshold {
		return
	}
	h.scan(tid)
}

// Flush forces a scan of tid's retirement list regardless of threshold.
// Used at teardown and by tests; same progress bound as Retire.
func (h *HazardPointers[T]) Flush(tid int) {
	h.scan(tid)
}

// Snapshot returns current reclamation counters.
func (h *HazardPointers[T]) Snapshot() Stats { return h.counters.snapshot() }

// DumpState emits occupancy diagnostics (api.Debug-style probe payload).
func (h *HazardPointers[T]) DumpState() map[string]any {
	occupied := 0
	for i := range h.slots {
		if h.slots[i].ptr.Load() != nil {
			occupied++
		}
	}
	backlog := 0
	for i := range h.retired {
		backlog += h.retired[i].list.Length()
	}
	st := h.Snapshot()
	return map[string]any{
		"strategy":       api.StrategyHazardPointers.String(),
		"slots.occupied": occupied,
		"retired.total":  backlog,
		"stats.retired":  st.Retired,
		"stats.released": st.Released,
		"stats.scans":    st.Scans,
	}
}

// scan rotates tid's retirement list once: every entry still announced
// somewhere goes back to the tail, everything else is released.
func (h *HazardPointers[T]) scan(tid int) {
	r := h.retired[tid].list
	h.counters.scans.Add(1)
	for n := r.Length(); n > 0; n-- {
		obj := r.Remove().(*T)
		if h.announced(obj) {
			r.Add(obj)
			continue
		}
		h.counters.released.Add(1)
		if h.release != nil {
			h.release(obj)
		}
	}
}

func (h *HazardPointers[T]) announced(obj *T) bool {
	for t := 0; t < h.maxThreads; t++ {
		base := t * h.maxSlots
		for i := h.maxSlots - 1; i >= 0; i-- {
			if h.slots[base+i].ptr.Load() == obj {
				return true
			}
		}
	}
	return false
}
