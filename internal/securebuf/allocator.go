package securebuf

// Allocator hands out and takes back the raw memory behind a Buffer.
//
// Alloc must return a zero-filled slice with len and cap equal to size, or
// nil when size is zero. Free receives exactly the slice Alloc returned,
// after it has been wiped and unlocked.
type Allocator interface {
	Alloc(size int) ([]byte, error)
	Free(b []byte) error
}

type heapAllocator struct{}

// Heap allocates from the Go heap. The Go collector does not move heap
// objects, so a locked heap slice stays at the address that was locked.
func Heap() Allocator {
	return heapAllocator{}
}

func (heapAllocator) Alloc(size int) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	return make([]byte, size), nil
}

func (heapAllocator) Free([]byte) error {
	return nil
}
