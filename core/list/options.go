// File: core/list/options.go
// Author: momentics <momentics@gmail.com>

package list

import "github.com/momentics/smr/api"

type options struct {
	strategy  api.Strategy
	threshold int
	recycle   bool
	poolCap   int
}

// Option configures a list at construction time.
type Option func(*options)

// WithStrategy selects the reclamation registry variant.
func WithStrategy(s api.Strategy) Option {
	return func(o *options) { o.strategy = s }
}

// WithRetireThreshold sets the registry's retire-scan threshold R.
func WithRetireThreshold(r int) Option {
	return func(o *options) { o.threshold = r }
}

// WithRecycling routes reclaimed nodes into a pool instead of the GC.
// capacity > 0 uses a bounded ring pool; capacity = 0 uses sync.Pool.
func WithRecycling(capacity int) Option {
	return func(o *options) {
		o.recycle = true
		o.poolCap = capacity
	}
}
