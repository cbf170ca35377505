//go:build linux || darwin

package memlock

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Limit returns RLIMIT_MEMLOCK for the calling process.
func Limit() (Rlimit, error) {
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_MEMLOCK, &rl); err != nil {
		return Rlimit{}, fmt.Errorf("failed to read RLIMIT_MEMLOCK: %w", err)
	}
	return Rlimit{Current: uint64(rl.Cur), Max: uint64(rl.Max)}, nil
}
