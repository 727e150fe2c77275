package queue

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/smr/api"
)

var variants = []struct {
	name string
	opts []Option
}{
	{"hazard-pointers", nil},
	{"hazard-eras", []Option{WithStrategy(api.StrategyHazardEras)}},
	{"hazard-pointers-recycled", []Option{WithRecycling(256)}},
	{"hazard-eras-recycled", []Option{WithStrategy(api.StrategyHazardEras), WithRecycling(256)}},
}

func TestQueueSequential(t *testing.T) {
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			q := New[int](2, v.opts...)
			vals := []int{1, 2, 3}

			mustEnqueue(t, q, &vals[0], 0)
			mustEnqueue(t, q, &vals[1], 0)
			if got := q.Dequeue(0); got == nil || *got != 1 {
				t.Fatalf("dequeue = %v, want 1", deref(got))
			}
			mustEnqueue(t, q, &vals[2], 0)
			if got := q.Dequeue(0); got == nil || *got != 2 {
				t.Fatalf("dequeue = %v, want 2", deref(got))
			}
			if got := q.Dequeue(0); got == nil || *got != 3 {
				t.Fatalf("dequeue = %v, want 3", deref(got))
			}
			if got := q.Dequeue(0); got != nil {
				t.Fatalf("dequeue on empty = %v, want nil", *got)
			}
		})
	}
}

func TestQueueNilItemRejected(t *testing.T) {
	q := New[int](1)
	if err := q.Enqueue(nil, 0); !errors.Is(err, api.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestQueueDrain(t *testing.T) {
	q := New[int](1, WithRecycling(64))
	vals := make([]int, 5)
	for i := range vals {
		vals[i] = i * 10
		mustEnqueue(t, q, &vals[i], 0)
	}
	items := q.Drain(0)
	if len(items) != 5 {
		t.Fatalf("drained %d items, want 5", len(items))
	}
	for i, it := range items {
		if *it != i*10 {
			t.Fatalf("items[%d] = %d, want %d", i, *it, i*10)
		}
	}
	if q.Dequeue(0) != nil {
		t.Fatal("queue not empty after drain")
	}
}

// One producer, one consumer: every value arrives exactly once and in the
// producer's order, then the queue reads empty.
func TestQueueProducerConsumer(t *testing.T) {
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			const total = 1000
			q := New[int](2, v.opts...)

			done := make(chan struct{})
			go func() {
				defer close(done)
				for i := 0; i < total; i++ {
					val := i
					mustEnqueue(t, q, &val, 0)
				}
			}()

			seen := make([]bool, total)
			last := -1
			for got := 0; got < total; {
				item := q.Dequeue(1)
				if item == nil {
					runtime.Gosched()
					continue
				}
				if seen[*item] {
					t.Fatalf("value %d dequeued twice", *item)
				}
				if *item <= last {
					t.Fatalf("value %d arrived after %d", *item, last)
				}
				seen[*item] = true
				last = *item
				got++
			}
			<-done
			if q.Dequeue(1) != nil {
				t.Fatal("queue not empty after transfer")
			}
		})
	}
}

// Checksum-based MPMC stress: no item lost, none duplicated.
func TestQueueMPMCChecksum(t *testing.T) {
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			const (
				producers        = 4
				consumers        = 4
				itemsPerProducer = 10000
			)
			q := New[int](producers+consumers, v.opts...)

			var wg sync.WaitGroup
			var sentSum, receivedSum, receivedCount int64
			totalItems := int64(producers * itemsPerProducer)

			for p := 0; p < producers; p++ {
				wg.Add(1)
				go func(tid int) {
					defer wg.Done()
					for i := 0; i < itemsPerProducer; i++ {
						val := tid*itemsPerProducer + i + 1
						mustEnqueue(t, q, &val, tid)
						atomic.AddInt64(&sentSum, int64(val))
					}
				}(p)
			}

			consumerWg := sync.WaitGroup{}
			for c := 0; c < consumers; c++ {
				consumerWg.Add(1)
				go func(tid int) {
					defer consumerWg.Done()
					for {
						if item := q.Dequeue(tid); item != nil {
							atomic.AddInt64(&receivedSum, int64(*item))
							if atomic.AddInt64(&receivedCount, 1) == totalItems {
								return
							}
						} else {
							if atomic.LoadInt64(&receivedCount) >= totalItems {
								return
							}
							runtime.Gosched()
						}
					}
				}(producers + c)
			}

			wg.Wait()

			done := make(chan struct{})
			go func() {
				consumerWg.Wait()
				close(done)
			}()

			select {
			case <-done:
				if sentSum != atomic.LoadInt64(&receivedSum) {
					t.Errorf("checksum mismatch: sent %d, received %d", sentSum, receivedSum)
				}
			case <-time.After(30 * time.Second):
				t.Errorf("timeout waiting for consumers, received %d/%d",
					atomic.LoadInt64(&receivedCount), totalItems)
			}
		})
	}
}

// With a nonzero threshold and steady dequeue traffic the retirement
// backlog must stay bounded.
func TestQueueRetireBacklogBounded(t *testing.T) {
	const threshold = 16
	q := New[int](1, WithRetireThreshold(threshold), WithRecycling(64))
	for i := 0; i < 10000; i++ {
		val := i
		mustEnqueue(t, q, &val, 0)
		if got := q.Dequeue(0); got == nil || *got != i {
			t.Fatalf("dequeue = %v, want %d", deref(got), i)
		}
	}
	st := q.Stats()
	if st.MaxBacklog > threshold {
		t.Errorf("backlog high-water = %d, want <= %d", st.MaxBacklog, threshold)
	}
	if st.Retired == 0 || st.Released == 0 {
		t.Errorf("reclamation never ran: %+v", st)
	}
}

func mustEnqueue(t testing.TB, q *Queue[int], v *int, tid int) {
	t.Helper()
	if err := q.Enqueue(v, tid); err != nil {
		t.Errorf("Enqueue: %v", err)
	}
}

func deref(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
