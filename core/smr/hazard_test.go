package smr

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

type tnode struct {
	gen uint64
	val uint64
	EraStamp
}

const poison = ^uint64(0)

func checksum(gen uint64) uint64 { return gen*2 + 1 }

func TestProtectDefersRelease(t *testing.T) {
	var freed []*tnode
	hp := NewHazardPointers[tnode](2, 4, WithRelease[tnode](func(n *tnode) {
		freed = append(freed, n)
	}))

	var shared atomic.Pointer[tnode]
	n := &tnode{val: 7}
	shared.Store(n)

	if got := hp.Protect(0, &shared, 0); got != n {
		t.Fatalf("Protect returned %p, want %p", got, n)
	}

	// Retired while thread 0 still announces it: must stay in the list.
	hp.Retire(n, 1)
	if len(freed) != 0 {
		t.Fatalf("node released while protected")
	}

	hp.Clear(0)
	hp.Flush(1)
	if len(freed) != 1 || freed[0] != n {
		t.Fatalf("node not released after Clear: freed=%v", freed)
	}
}

func TestClearResetsSlots(t *testing.T) {
	hp := NewHazardPointers[tnode](3, 2)
	n := &tnode{}
	hp.ProtectPtr(0, n, 1)
	hp.ProtectPtr(2, n, 1)

	ds := hp.DumpState()
	if got := ds["slots.occupied"].(int); got != 2 {
		t.Fatalf("occupied = %d, want 2", got)
	}
	hp.Clear(1)
	ds = hp.DumpState()
	if got := ds["slots.occupied"].(int); got != 0 {
		t.Fatalf("occupied after Clear = %d, want 0", got)
	}
}

func TestRetireThresholdBoundsBacklog(t *testing.T) {
	var released int
	hp := NewHazardPointers[tnode](2, 2,
		WithRetireThreshold[tnode](8),
		WithRelease[tnode](func(*tnode) { released++ }),
	)

	const total = 100
	for i := 0; i < total; i++ {
		hp.Retire(&tnode{}, 0)
	}
	st := hp.Snapshot()
	if st.MaxBacklog > 8 {
		t.Errorf("backlog high-water = %d, want <= 8", st.MaxBacklog)
	}
	if st.Retired != total {
		t.Errorf("retired = %d, want %d", st.Retired, total)
	}
	hp.Flush(0)
	if released != total {
		t.Errorf("released = %d, want %d", released, total)
	}
}

// TestHazardPointersStress swaps a shared pointer from writer threads that
// retire and recycle the displaced node, while reader threads protect and
// dereference it. The release hook poisons the node; a reader observing
// poison or a broken gen/val checksum means a node was reused while still
// protected.
func TestHazardPointersStress(t *testing.T) {
	const (
		writers = 2
		readers = 2
		threads = writers + readers
		iters   = 50000
	)

	var freelist sync.Pool
	freelist.New = func() any { return new(tnode) }

	hp := NewHazardPointers[tnode](1, threads, WithRelease[tnode](func(n *tnode) {
		n.val = poison
		freelist.Put(n)
	}))

	var shared atomic.Pointer[tnode]
	var genCtr atomic.Uint64
	var bad atomic.Int64
	var wg sync.WaitGroup

	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(tid int) {
			defer wg.Done()
			for i := 0; i < iters; i++ {
				n := freelist.Get().(*tnode)
				g := genCtr.Add(1)
				n.gen = g
				n.val = checksum(g)
				if old := shared.Swap(n); old != nil {
					hp.Retire(old, tid)
				}
			}
			hp.Flush(tid)
		}(w)
	}

	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func(tid int) {
			defer wg.Done()
			for i := 0; i < iters; i++ {
				n := hp.Protect(0, &shared, tid)
				if n != nil && n.val != checksum(n.gen) {
					bad.Add(1)
				}
				hp.Clear(tid)
				if i%1024 == 0 {
					runtime.Gosched()
				}
			}
		}(writers + r)
	}

	wg.Wait()
	if n := bad.Load(); n != 0 {
		t.Fatalf("%d protected reads observed a recycled node", n)
	}
	st := hp.Snapshot()
	if st.Released > st.Retired {
		t.Fatalf("released %d > retired %d", st.Released, st.Retired)
	}
}
