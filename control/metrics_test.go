package control

import (
	"testing"
)

func TestMetricsRegistrySetAndSnapshot(t *testing.T) {
	mr := NewMetricsRegistry()
	mr.Set("workers", 8)
	snap := mr.GetSnapshot()
	if snap["workers"] != 8 {
		t.Fatalf("workers = %v, want 8", snap["workers"])
	}
}

func TestMetricsRegistryProbes(t *testing.T) {
	mr := NewMetricsRegistry()
	calls := 0
	mr.RegisterProbe("queue.smr", func() any {
		calls++
		return map[string]any{"retired": 10}
	})

	snap := mr.DumpState()
	probe, ok := snap["queue.smr"].(map[string]any)
	if !ok {
		t.Fatalf("probe result missing from snapshot: %v", snap)
	}
	if probe["retired"] != 10 {
		t.Fatalf("probe payload = %v", probe)
	}
	if calls != 1 {
		t.Fatalf("probe evaluated %d times, want 1", calls)
	}
}
