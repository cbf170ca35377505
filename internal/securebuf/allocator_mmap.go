//go:build linux || darwin || freebsd || netbsd || openbsd

package securebuf

import (
	"fmt"

	"golang.org/x/sys/unix"
)

type mmapAllocator struct{}

// Mmap allocates each buffer as its own anonymous mapping outside the Go
// heap. On linux the mapping is also excluded from core dumps.
func Mmap() Allocator {
	return mmapAllocator{}
}

func (mmapAllocator) Alloc(size int) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}

	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mmap failed: %w", err)
	}

	if err := excludeFromCoreDump(data); err != nil {
		unix.Munmap(data)
		return nil, fmt.Errorf("madvise(MADV_DONTDUMP) failed: %w", err)
	}

	return data, nil
}

func (mmapAllocator) Free(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munmap(b)
}
