//go:build !(linux || darwin || freebsd || netbsd || openbsd || windows)

package memlock

func LockMemory(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return ErrUnsupported
}

func UnlockMemory(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return ErrUnsupported
}
