// File: core/smr/eras.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Hazard-eras registry: announcements are global era values instead of
// pointer identities. One stamped era protects every node whose
// [Created, Retired] interval contains it, so a traversal only re-stamps
// when the clock advances.

package smr

import (
	"sync/atomic"

	"github.com/eapache/queue"
	"golang.org/x/sys/cpu"

	"github.com/momentics/smr/api"
)

// eraNone marks an empty announcement slot.
const eraNone = 0

type eraProbe struct{ EraStamp }

// Compile-time interface compliance.
var _ api.Reclaimer[eraProbe] = (*HazardEras[eraProbe, *eraProbe])(nil)

type eraSlot struct {
	era atomic.Uint64
	_   cpu.CacheLinePad
}

// HazardEras is the interval-based reclamation registry. Node type T must
// carry an EraStamp (embed smr.EraStamp) reachable through pointer type P.
//
// A node retired in era R with creation era C is releasable once every
// announced era is either below C or above R.
type HazardEras[T any, P StampedPtr[T]] struct {
	maxSlots   int
	maxThreads int
	threshold  int
	release    func(*T)

	clock   atomic.Uint64
	_       cpu.CacheLinePad
	slots   []eraSlot // row-major: slots[tid*maxSlots+index]
	retired []retireShard

	counters
}

// NewHazardEras creates a registry with maxSlots era slots for each of
// maxThreads threads. The era clock starts at 1; era 0 means "no
// protection".
func NewHazardEras[T any, P StampedPtr[T]](maxSlots, maxThreads int, opts ...Option[T]) *HazardEras[T, P] {
	if maxSlots <= 0 {
		maxSlots = MaxSlots
	}
	if maxThreads <= 0 {
		maxThreads = MaxThreads
	}
	cfg := applyOptions(opts)
	e := &HazardEras[T, P]{
		maxSlots:   maxSlots,
		maxThreads: maxThreads,
		threshold:  cfg.threshold,
		release:    cfg.release,
		slots:      make([]eraSlot, maxSlots*maxThreads),
		retired:    make([]retireShard, maxThreads),
	}
	e.clock.Store(1)
	for i := range e.retired {
		e.retired[i].list = queue.New()
	}
	return e
}

func (e *HazardEras[T, P]) slot(tid, index int) *atomic.Uint64 {
	return &e.slots[tid*e.maxSlots+index].era
}

// Era returns the current value of the global era clock.
func (e *HazardEras[T, P]) Era() uint64 { return e.clock.Load() }

// Protect loads *src and stamps the current era into tid's slot, looping
// until the clock is stable across the load. Unlike hazard pointers the
// stamp keeps protecting later loads from the same slot index until the
// clock moves on.
func (e *HazardEras[T, P]) Protect(index int, src *atomic.Pointer[T], tid int) *T {
	s := e.slot(tid, index)
	prev := s.Load()
	for {
		ptr := src.Load()
		era := e.clock.Load()
		if era == prev {
			return ptr
		}
		s.Store(era)
		prev = era
	}
}

// ProtectPtr stamps the current era and returns ptr. The caller must
// revalidate that ptr is still reachable from its source afterwards: a node
// that is still linked cannot have been retired, so its retirement era will
// be at or above the stamp.
func (e *HazardEras[T, P]) ProtectPtr(index int, ptr *T, tid int) *T {
	s := e.slot(tid, index)
	era := e.clock.Load()
	if s.Load() != era {
		s.Store(era)
	}
	return ptr
}

// Clear resets all of tid's era slots to "no protection".
func (e *HazardEras[T, P]) Clear(tid int) {
	base := tid * e.maxSlots
	for i := 0; i < e.maxSlots; i++ {
		e.slots[base+i].era.Store(eraNone)
	}
}

// Retire stamps the node's retirement era, advances the clock past it and
// releases every listed node whose validity interval no announced era
// intersects.
func (e *HazardEras[T, P]) Retire(ptr *T, tid int) {
	era := e.clock.Load()
	P(ptr).Stamp().Retired = era
	r := e.retired[tid].list
	r.Add(ptr)
	e.counters.retired.Add(1)
	e.observeBacklog(uint64(r.Length()))
	// Ensure later allocations get a creation era beyond this interval.
	if e.clock.Load() == era {
		e.clock.Add(1)
	}
	if r.Length() < e.threshold {
		return
	}
	e.scan(tid)
}

// Flush forces a scan of tid's retirement list regardless of threshold.
func (e *HazardEras[T, P]) Flush(tid int) {
	e.scan(tid)
}

// Snapshot returns current reclamation counters.
func (e *HazardEras[T, P]) Snapshot() Stats { return e.counters.snapshot() }

// DumpState emits occupancy diagnostics (api.Debug-style probe payload).
func (e *HazardEras[T, P]) DumpState() map[string]any {
	occupied := 0
	for i := range e.slots {
		if e.slots[i].era.Load() != eraNone {
			occupied++
		}
	}
	backlog := 0
	for i := range e.retired {
		backlog += e.retired[i].list.Length()
	}
	st := e.Snapshot()
	return map[string]any{
		"strategy":       api.StrategyHazardEras.String(),
		"era":            e.Era(),
		"slots.occupied": occupied,
		"retired.total":  backlog,
		"stats.retired":  st.Retired,
		"stats.released": st.Released,
		"stats.scans":    st.Scans,
	}
}

func (e *HazardEras[T, P]) scan(tid int) {
	r := e.retired[tid].list
	e.counters.scans.Add(1)
	for n := r.Length(); n > 0; n-- {
		obj := r.Remove().(*T)
		if e.covered(obj) {
			r.Add(obj)
			continue
		}
		e.counters.released.Add(1)
		if e.release != nil {
			e.release(obj)
		}
	}
}

// covered reports whether any announced era falls inside the node's
// validity interval.
func (e *HazardEras[T, P]) covered(obj *T) bool {
	stamp := P(obj).Stamp()
	for i := range e.slots {
		era := e.slots[i].era.Load()
		if era == eraNone || era < stamp.Created || era > stamp.Retired {
			continue
		}
		return true
	}
	return false
}
