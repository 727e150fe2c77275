// File: core/smr/stamp.go
// Author: momentics <momentics@gmail.com>
//
// Era stamps carried by nodes managed by the hazard-eras registry.

package smr

// EraStamp records the validity interval of a node: the era it was linked
// in and the era it was retired in. Both fields are written only by the
// single thread that owns the node at that point of its lifecycle
// (allocator on Created, retirer on Retired), so plain loads/stores are
// enough; visibility rides on the atomic publish of the node itself.
type EraStamp struct {
	Created uint64
	Retired uint64
}

// Stamp returns the stamp itself so node types can satisfy Stamped by
// embedding EraStamp.
func (s *EraStamp) Stamp() *EraStamp { return s }

// Reset prepares a recycled node for a new lifetime starting at era.
func (s *EraStamp) Reset(era uint64) {
	s.Created = era
	s.Retired = 0
}

// Stamped is implemented by any node that embeds EraStamp. The hazard-eras
// registry requires it; the hazard-pointers registry ignores the stamp.
type Stamped interface {
	Stamp() *EraStamp
}

// StampedPtr constrains a pointer-to-node type to carry an era stamp.
type StampedPtr[T any] interface {
	*T
	Stamped
}
