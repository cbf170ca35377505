//go:build !windows

package memlock

import "os"

// IsElevated reports whether the process runs as root. Root (or
// CAP_IPC_LOCK) is not bound by RLIMIT_MEMLOCK.
func IsElevated() (bool, error) {
	return os.Geteuid() == 0, nil
}
