// Package pool
// Author: momentics <momentics@gmail.com>
//
// Node recycling layer for the smr library. Reclamation registries release
// nodes into a pool and containers allocate from it, closing the
// container -> retirement list -> pool -> container ownership loop.
// See nodepool.go and ringpool.go for implementation details.
package pool
