//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package securebuf

import "errors"

var errNoMmap = errors.New("mmap allocator not supported on this platform")

type mmapAllocator struct{}

// Mmap is unavailable on this platform; every allocation fails.
func Mmap() Allocator {
	return mmapAllocator{}
}

func (mmapAllocator) Alloc(size int) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	return nil, errNoMmap
}

func (mmapAllocator) Free([]byte) error {
	return nil
}
