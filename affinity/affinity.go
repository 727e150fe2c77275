// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Stress workers pin themselves to
// distinct cores so reclamation behavior under real cross-core traffic is
// observable. Platform-specific implementations are located in separate
// files (affinity_linux.go, affinity_windows.go, etc.) guarded by build tags.

package affinity

// SetAffinity pins the current OS thread to a given logical CPU/core on
// supported platforms. Callers must hold runtime.LockOSThread for the pin
// to be meaningful. On unsupported platforms returns an error.
func SetAffinity(cpuID int) error {
	return setAffinityPlatform(cpuID)
}
