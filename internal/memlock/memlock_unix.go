//go:build linux || darwin || freebsd || netbsd || openbsd

package memlock

import (
	"golang.org/x/sys/unix"
)

func LockMemory(b []byte) error {
	if len(b) == 0 {
		return nil
	}

	return unix.Mlock(b)
}

func UnlockMemory(b []byte) error {
	if len(b) == 0 {
		return nil
	}

	return unix.Munlock(b)
}
