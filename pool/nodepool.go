// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package pool

import (
	"sync"

	"github.com/momentics/smr/api"
)

// Ensure compile-time interface compliance.
var _ api.NodePool[int] = (*SyncPool[int])(nil)

// SyncPool wraps sync.Pool for generic node recycling.
type SyncPool[T any] struct {
	pool *sync.Pool
}

// NewSyncPool creates a new SyncPool allocating zeroed nodes on miss.
func NewSyncPool[T any]() *SyncPool[T] {
	return &SyncPool[T]{
		pool: &sync.Pool{New: func() any { return new(T) }},
	}
}

func (sp *SyncPool[T]) Get() *T {
	return sp.pool.Get().(*T)
}

func (sp *SyncPool[T]) Put(n *T) {
	sp.pool.Put(n)
}
