// Package memlock wraps the operating system's memory locking calls and the
// non-elidable wipe used before locked memory is released.
package memlock

import "errors"

// ErrUnsupported is returned on platforms without a memory locking call.
var ErrUnsupported = errors.New("memlock: not supported on this platform")

// Locker pins a byte range into physical memory and releases it again.
// Implementations treat an empty slice as a no-op.
type Locker interface {
	Lock(b []byte) error
	Unlock(b []byte) error
}

type systemLocker struct{}

// System returns the locker backed by the host's mlock/munlock (or
// VirtualLock/VirtualUnlock on windows).
func System() Locker {
	return systemLocker{}
}

func (systemLocker) Lock(b []byte) error {
	return LockMemory(b)
}

func (systemLocker) Unlock(b []byte) error {
	return UnlockMemory(b)
}

type noopLocker struct{}

// Noop returns a locker that never touches the OS. Memory handed to it can
// be swapped; it is meant for hosts where RLIMIT_MEMLOCK is zero and the
// operator has opted out of pinning.
func Noop() Locker {
	return noopLocker{}
}

func (noopLocker) Lock([]byte) error   { return nil }
func (noopLocker) Unlock([]byte) error { return nil }
