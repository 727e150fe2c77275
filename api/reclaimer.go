// File: api/reclaimer.go
// Author: momentics <momentics@gmail.com>
//
// Safe-memory-reclamation contract shared by all registry variants.
// Consumers (lock-free containers) talk to the registry exclusively
// through this interface so the reclamation strategy can be swapped
// without touching the container algorithms.

package api

import "sync/atomic"

// Strategy selects a reclamation registry variant.
type Strategy int

const (
	// StrategyHazardPointers protects individual pointer values
	// (identity-based, one announcement per dereference chain).
	StrategyHazardPointers Strategy = iota

	// StrategyHazardEras protects a time window of the global era clock
	// (interval-based, one announcement covers many dereferences).
	StrategyHazardEras
)

// String returns the canonical name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyHazardPointers:
		return "hazard-pointers"
	case StrategyHazardEras:
		return "hazard-eras"
	default:
		return "unknown"
	}
}

// Reclaimer defers physical release of retired nodes until no thread's
// announcements can still cover them.
//
// Thread ids are caller-assigned integers in [0, maxThreads). They index
// the per-thread slot and retirement arrays directly and are a
// precondition, never validated on the hot path.
type Reclaimer[T any] interface {
	// Protect loads *src, announces the loaded value in the calling
	// thread's slot and revalidates the source until the announcement is
	// known to be visible before the value could have been retired.
	// Returns the protected pointer (nil needs no protection).
	Protect(index int, src *atomic.Pointer[T], tid int) *T

	// ProtectPtr announces a pointer the caller already holds and returns
	// it for chaining. The caller must revalidate the shared location the
	// pointer was loaded from after this call, otherwise the announcement
	// may have come too late.
	ProtectPtr(index int, ptr *T, tid int) *T

	// Clear resets every announcement slot of tid. Must run on every exit
	// path of an operation that protected anything; a slot left set blocks
	// reclamation of whatever it names forever.
	Clear(tid int)

	// Retire hands an unlinked node to tid's retirement list and releases
	// every listed node no live announcement covers. Never fails: "not
	// yet releasable" is a silent, expected outcome.
	Retire(ptr *T, tid int)

	// Era reports the current global era. Identity-based registries,
	// which have no era clock, report 0.
	Era() uint64
}
