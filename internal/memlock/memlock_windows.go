//go:build windows

package memlock

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

func LockMemory(b []byte) error {
	if len(b) == 0 {
		return nil
	}

	addr := uintptr(unsafe.Pointer(&b[0]))
	size := uintptr(len(b))

	return windows.VirtualLock(addr, size)
}

func UnlockMemory(b []byte) error {
	if len(b) == 0 {
		return nil
	}

	addr := uintptr(unsafe.Pointer(&b[0]))
	size := uintptr(len(b))

	return windows.VirtualUnlock(addr, size)
}
