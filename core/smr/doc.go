// Package smr
// Author: momentics <momentics@gmail.com>
//
// Safe memory reclamation registries for lock-free linked structures.
// Two interchangeable variants behind api.Reclaimer: HazardPointers
// (identity-based announcements, the canonical core) and HazardEras
// (era-interval announcements, cheaper per dereference, coarser grain).
// See hazard.go and eras.go for implementation details.
package smr
