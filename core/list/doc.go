// Package list
// Author: momentics <momentics@gmail.com>
//
// Lock-free ordered set (Michael's list-based set, with Harris-style
// logical deletion) over a reclamation registry. Removal marks a node's
// outgoing link before unlinking it; traversals help unlink marked nodes
// and retire them exactly once via the winning CAS.
package list
