package memlock

import "runtime"

// Wipe sets every byte in b to zero.
//
// It is kept out of line and followed by KeepAlive so the compiler cannot
// drop the stores when b is released right after the call.
//
//go:noinline
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
