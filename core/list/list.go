// File: core/list/list.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Michael's lock-free list-based set over a reclamation registry.
// The logical-deletion mark lives in an immutable link record
// {next, deleted} swapped by CAS instead of a low pointer bit; a fresh
// record per transition also keeps link-level CAS free of ABA.

package list

import (
	"cmp"
	"sync/atomic"

	"github.com/momentics/smr/api"
	"github.com/momentics/smr/core/smr"
	"github.com/momentics/smr/pool"
)

// Three rotating hazard indices protect prev, curr and next during
// traversal.
const slotCount = 3

// link is an immutable outgoing edge. deleted set means the node owning
// this link is logically removed. Mutations replace the whole record via
// CAS on node.link, so mark and successor always change together.
type link[K cmp.Ordered] struct {
	next    *node[K]
	deleted bool
}

type node[K cmp.Ordered] struct {
	key K
	smr.EraStamp
	link atomic.Pointer[link[K]]
}

// registry is the widened view of api.Reclaimer both variants satisfy.
type registry[K cmp.Ordered] interface {
	api.Reclaimer[node[K]]
	Snapshot() smr.Stats
	DumpState() map[string]any
	Flush(tid int)
}

// List is a lock-free ordered set. Add and Remove are lock-free; Contains
// is lock-free and, with the hazard-eras registry, traverses on a single
// era stamp per clock advance.
//
// All operations take the caller's thread id in [0, maxThreads).
type List[K cmp.Ordered] struct {
	head *node[K]
	tail *node[K]

	rec   registry[K]
	nodes api.NodePool[node[K]]
}

// New creates a set sized for maxThreads concurrent threads.
func New[K cmp.Ordered](maxThreads int, opts ...Option) *List[K] {
	var cfg options
	for _, o := range opts {
		o(&cfg)
	}

	l := &List[K]{}

	var recOpts []smr.Option[node[K]]
	if cfg.threshold > 0 {
		recOpts = append(recOpts, smr.WithRetireThreshold[node[K]](cfg.threshold))
	}
	if cfg.recycle {
		if cfg.poolCap > 0 {
			l.nodes = pool.NewRingPool[node[K]](cfg.poolCap)
		} else {
			l.nodes = pool.NewSyncPool[node[K]]()
		}
		p := l.nodes
		recOpts = append(recOpts, smr.WithRelease[node[K]](func(n *node[K]) {
			n.link.Store(nil)
			p.Put(n)
		}))
	}

	switch cfg.strategy {
	case api.StrategyHazardEras:
		l.rec = smr.NewHazardEras[node[K], *node[K]](slotCount, maxThreads, recOpts...)
	default:
		l.rec = smr.NewHazardPointers[node[K]](slotCount, maxThreads, recOpts...)
	}

	l.head = &node[K]{}
	l.tail = &node[K]{}
	l.head.Stamp().Reset(l.rec.Era())
	l.tail.Stamp().Reset(l.rec.Era())
	l.tail.link.Store(&link[K]{})
	l.head.link.Store(&link[K]{next: l.tail})
	return l
}

func (l *List[K]) alloc(key K) *node[K] {
	var n *node[K]
	if l.nodes != nil {
		n = l.nodes.Get()
	} else {
		n = new(node[K])
	}
	n.key = key
	n.Stamp().Reset(l.rec.Era())
	return n
}

func (l *List[K]) recycle(n *node[K]) {
	// Only for nodes that were never linked; linked nodes go through Retire.
	if l.nodes != nil {
		n.link.Store(nil)
		l.nodes.Put(n)
	}
}

// position is a traversal result: prev is unmarked and was observed linking
// to curr through prevLink.
type position[K cmp.Ordered] struct {
	prev     *node[K]
	prevLink *link[K]
	curr     *node[K]
}

// find walks to the first node with key >= target, helping unlink marked
// nodes on the way. On return tid's slots still protect the position; the
// caller clears them on every exit path.
func (l *List[K]) find(key K, tid int) (position[K], bool) {
retry:
	for {
		idxPrev, idxCurr, idxNext := 0, 1, 2
		prev := l.head
		prevLink := prev.link.Load()
		curr := l.rec.ProtectPtr(idxCurr, prevLink.next, tid)
		if prev.link.Load() != prevLink {
			continue retry
		}
		for {
			if curr == l.tail {
				return position[K]{prev: prev, prevLink: prevLink, curr: curr}, false
			}
			currLink := curr.link.Load()
			next := l.rec.ProtectPtr(idxNext, currLink.next, tid)
			// Revalidate: curr still unmarked and pointing at next, which
			// also proves next was reachable after its announcement.
			if curr.link.Load() != currLink {
				continue retry
			}
			if currLink.deleted {
				// Help unlink the marked node, then claim its retirement
				// through the winning CAS.
				unlinked := &link[K]{next: next}
				if !prev.link.CompareAndSwap(prevLink, unlinked) {
					continue retry
				}
				l.rec.Retire(curr, tid)
				prevLink = unlinked
				curr = next
				idxCurr, idxNext = idxNext, idxCurr
				continue
			}
			if curr.key >= key {
				return position[K]{prev: prev, prevLink: prevLink, curr: curr}, curr.key == key
			}
			prev, prevLink = curr, currLink
			curr = next
			idxPrev, idxCurr, idxNext = idxCurr, idxNext, idxPrev
		}
	}
}

// Add inserts key; returns false when the key is already present.
func (l *List[K]) Add(key K, tid int) bool {
	n := l.alloc(key)
	for {
		pos, found := l.find(key, tid)
		if found {
			l.rec.Clear(tid)
			l.recycle(n)
			return false
		}
		n.link.Store(&link[K]{next: pos.curr})
		if pos.prev.link.CompareAndSwap(pos.prevLink, &link[K]{next: n}) {
			l.rec.Clear(tid)
			return true
		}
	}
}

// Remove logically deletes key (mark), then attempts the physical unlink.
// Whether or not the unlink CAS wins here, the node is retired exactly
// once: by whichever thread's unlink CAS succeeds.
func (l *List[K]) Remove(key K, tid int) bool {
	for {
		pos, found := l.find(key, tid)
		if !found {
			l.rec.Clear(tid)
			return false
		}
		curr := pos.curr
		currLink := curr.link.Load()
		if currLink.deleted {
			// Lost the race to another remover; re-find skips the corpse.
			continue
		}
		// Mark before unlink: freezes the successor and excludes a second
		// remover from claiming this node.
		if !curr.link.CompareAndSwap(currLink, &link[K]{next: currLink.next, deleted: true}) {
			continue
		}
		won := pos.prev.link.CompareAndSwap(pos.prevLink, &link[K]{next: currLink.next})
		l.rec.Clear(tid)
		if won {
			l.rec.Retire(curr, tid)
		}
		return true
	}
}

// Contains reports whether key is in the set.
func (l *List[K]) Contains(key K, tid int) bool {
	_, found := l.find(key, tid)
	l.rec.Clear(tid)
	return found
}

// Flush forces a scan of tid's retirement backlog.
func (l *List[K]) Flush(tid int) { l.rec.Flush(tid) }

// Stats returns the registry's reclamation counters.
func (l *List[K]) Stats() smr.Stats { return l.rec.Snapshot() }

// DumpState emits registry diagnostics for debug probes.
func (l *List[K]) DumpState() map[string]any { return l.rec.DumpState() }
