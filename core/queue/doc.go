// Package queue
// Author: momentics <momentics@gmail.com>
//
// Michael-Scott lock-free FIFO queue with deferred memory reclamation.
// Enqueue and dequeue are lock-free; a dequeued sentinel is retired to the
// reclamation registry instead of being dropped, so nodes can be recycled
// through a pool without risking reuse while another thread still holds
// them.
package queue
