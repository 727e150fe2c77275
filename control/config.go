// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Typed runtime configuration for reclamation workloads. Consumed by the
// examples and benchmarks when sizing registries, containers and pools.

package control

import (
	"github.com/momentics/smr/api"
)

// Config sizes a reclamation deployment.
type Config struct {
	// MaxThreads is the number of caller-managed thread ids, [0, MaxThreads).
	MaxThreads int

	// SlotsPerThread is K, the announcement slots each thread may use.
	SlotsPerThread int

	// RetireThreshold is R: retirement-list length below which Retire skips
	// the scan. 0 scans on every retire.
	RetireThreshold int

	// PoolCapacity bounds the node recycling ring; 0 disables recycling.
	PoolCapacity int

	// Strategy picks the registry variant.
	Strategy api.Strategy
}

// DefaultConfig returns a conservative configuration.
func DefaultConfig() Config {
	return Config{
		MaxThreads:      128,
		SlotsPerThread:  4,
		RetireThreshold: 0,
		PoolCapacity:    0,
		Strategy:        api.StrategyHazardPointers,
	}
}

// Validate rejects configurations the registries cannot honor.
func (c Config) Validate() error {
	if c.MaxThreads <= 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "max threads must be positive").
			WithContext("maxThreads", c.MaxThreads)
	}
	if c.SlotsPerThread <= 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "slots per thread must be positive").
			WithContext("slotsPerThread", c.SlotsPerThread)
	}
	if c.RetireThreshold < 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "retire threshold must not be negative").
			WithContext("retireThreshold", c.RetireThreshold)
	}
	if c.PoolCapacity < 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "pool capacity must not be negative").
			WithContext("poolCapacity", c.PoolCapacity)
	}
	switch c.Strategy {
	case api.StrategyHazardPointers, api.StrategyHazardEras:
	default:
		return api.NewError(api.ErrCodeNotSupported, "unknown reclamation strategy").
			WithContext("strategy", int(c.Strategy))
	}
	return nil
}
