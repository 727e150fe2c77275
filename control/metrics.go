// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for reclamation monitoring.
// Exposes counters in a thread-safe map with dynamic registration; probe
// functions let registries publish their stats lazily on snapshot.

package control

import (
	"sync"
	"time"

	"github.com/momentics/smr/api"
)

// Ensure compile-time interface compliance.
var _ api.Debug = (*MetricsRegistry)(nil)

// MetricsRegistry holds mutable metrics and lazy probes.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]any
	probes  map[string]func() any
	updated time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics: make(map[string]any),
		probes:  make(map[string]func() any),
	}
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// RegisterProbe registers a probe evaluated on every snapshot. Registries
// expose their DumpState here so sampling never touches hot paths.
func (mr *MetricsRegistry) RegisterProbe(name string, fn func() any) {
	mr.mu.Lock()
	mr.probes[name] = fn
	mr.mu.Unlock()
}

// GetSnapshot returns the latest metrics merged with probe results.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.metrics)+len(mr.probes))
	for k, v := range mr.metrics {
		out[k] = v
	}
	for k, fn := range mr.probes {
		out[k] = fn()
	}
	return out
}

// DumpState implements api.Debug.
func (mr *MetricsRegistry) DumpState() map[string]any {
	return mr.GetSnapshot()
}
