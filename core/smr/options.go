// File: core/smr/options.go
// Author: momentics <momentics@gmail.com>
//
// Functional options shared by both registry variants.

package smr

// Defaults mirroring the classic constants: K hazard slots per thread,
// a process-wide thread cap, and the retire-scan threshold R.
const (
	MaxThreads       = 128
	MaxSlots         = 4
	defaultThreshold = 0 // R = 0: scan on every retire
)

type settings[T any] struct {
	threshold int
	release   func(*T)
}

// Option configures a registry at construction time.
type Option[T any] func(*settings[T])

// WithRetireThreshold sets R, the retirement-list length below which Retire
// skips the slot scan. Larger R trades memory backlog for fewer scans;
// R = 0 scans on every retire.
func WithRetireThreshold[T any](r int) Option[T] {
	return func(s *settings[T]) {
		if r > 0 {
			s.threshold = r
		}
	}
}

// WithRelease installs the hook invoked for every node proven unreachable.
// Typically a pool Put; when unset, reclaimed nodes are simply dropped for
// the garbage collector to pick up.
func WithRelease[T any](fn func(*T)) Option[T] {
	return func(s *settings[T]) { s.release = fn }
}

func applyOptions[T any](opts []Option[T]) settings[T] {
	s := settings[T]{threshold: defaultThreshold}
	for _, o := range opts {
		o(&s)
	}
	return s
}
