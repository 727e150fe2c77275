// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Abstract node pooling API: recycling targets for reclaimed nodes.

package api

// NodePool recycles container nodes. A registry's release hook feeds
// reclaimed nodes into a pool and container allocation draws from it,
// so node lifetime stays observable instead of vanishing into the GC.
//
// Implementations must be safe for concurrent Get/Put from independent
// threads without external locking.
type NodePool[T any] interface {
	// Get returns a node ready for reuse, allocating when the pool is
	// empty. Callers must fully reinitialize the node before linking it.
	Get() *T

	// Put hands a node back for reuse. Only the reclamation registry may
	// call this for nodes that were ever linked into a structure.
	Put(n *T)
}
