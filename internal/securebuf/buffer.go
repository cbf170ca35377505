package securebuf

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/carved4/go-securebuf/internal/memlock"
)

// Buffer is a semi fixed size byte buffer whose memory is locked while it
// lives and wiped when it is destroyed. It can shrink but never grow past
// the size it was created with, and after shrinking it still owns, pins
// and eventually wipes the whole allocation.
//
// A Buffer must not be copied after creation; pass the *Buffer around.
type Buffer struct {
	r      *region
	length int
	opts   options

	cleanup    runtime.Cleanup
	hasCleanup bool
}

// region is the allocation itself. It is kept apart from Buffer so the
// runtime cleanup can reach it without keeping the Buffer alive.
type region struct {
	data     []byte
	locked   bool
	released bool
	locker   memlock.Locker
	alloc    Allocator
	logger   *slog.Logger
}

// New creates a zero-filled Buffer of the given size and locks it. Locking
// is skipped for size zero since there is nothing to pin.
func New(size int, opts ...Option) (*Buffer, error) {
	return newBuffer(size, buildOptions(opts))
}

// FromBytes copies src into a new locked Buffer with capacity len(src).
// The memory is locked before any byte is copied in. src is left as is.
func FromBytes(src []byte, opts ...Option) (*Buffer, error) {
	b, err := newBuffer(len(src), buildOptions(opts))
	if err != nil {
		return nil, err
	}
	copy(b.r.data, src)
	return b, nil
}

// FromOwned adopts src, which the caller must not use again. The buffer
// takes over the whole backing array, src[:cap(src)], so no copy of the
// secret is made: Len is len(src) and Cap is cap(src). The spare capacity
// is zeroed before it is locked.
//
// If locking fails the adopted array is wiped before the error is returned.
func FromOwned(src []byte, opts ...Option) (*Buffer, error) {
	o := buildOptions(opts)
	length := len(src)
	full := src[:cap(src)]
	memlock.Wipe(full[length:])

	// The memory belongs to the Go heap whatever allocator was configured.
	return adopt(full, length, Heap(), o)
}

func newBuffer(size int, o options) (*Buffer, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	data, err := o.alloc.Alloc(size)
	if err != nil {
		return nil, fmt.Errorf("securebuf: allocate %d bytes: %w", size, err)
	}
	return adopt(data, size, o.alloc, o)
}

// adopt locks data and wraps it. On failure data is wiped and handed back
// to alloc, so no locked or populated region outlives the call.
func adopt(data []byte, length int, alloc Allocator, o options) (*Buffer, error) {
	r := &region{
		data:   data,
		locker: o.locker,
		alloc:  alloc,
		logger: o.logger,
	}

	if len(data) > 0 {
		if err := o.locker.Lock(data); err != nil {
			memlock.Wipe(data)
			if ferr := alloc.Free(data); ferr != nil {
				o.logger.Error("could not release buffer after failed lock", "size", len(data), "err", ferr)
			}
			return nil, &LockError{Op: "lock", Size: len(data), Err: err}
		}
		r.locked = true
	}

	b := &Buffer{
		r:      r,
		length: length,
		opts:   o,
	}
	if len(data) > 0 {
		b.cleanup = runtime.AddCleanup(b, (*region).collect, r)
		b.hasCleanup = true
	}
	return b, nil
}

// Bytes returns the visible part of the buffer for reading and writing.
// The slice's capacity is clipped to Len, so appending to it copies out of
// the locked region: don't.
//
// The slice does not keep the Buffer alive. It is valid only until Destroy
// and only while the *Buffer itself is still reachable; once the handle is
// dropped the runtime cleanup may wipe the memory under it. Code that
// works on the slice after its last use of the handle should call
// runtime.KeepAlive on the Buffer.
func (b *Buffer) Bytes() []byte {
	if b == nil || b.r == nil {
		return nil
	}
	return b.r.data[:b.length:b.length]
}

// Len returns the visible length.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return b.length
}

// Cap returns the size of the backing allocation. It only changes when
// Destroy drops it to zero.
func (b *Buffer) Cap() int {
	if b == nil || b.r == nil {
		return 0
	}
	return len(b.r.data)
}

// IsEmpty reports whether the visible length is zero.
func (b *Buffer) IsEmpty() bool {
	return b.Len() == 0
}

// Shrink reduces the visible length to n. It does nothing if n is negative
// or larger than Cap. Bytes past the new length stay in the allocation and
// are only wiped by Destroy; Shrink hides them, it does not erase them.
func (b *Buffer) Shrink(n int) {
	if b == nil || n < 0 || n > b.Cap() {
		return
	}
	b.length = n
}

// Clone copies the visible bytes into a new, independently locked Buffer
// whose capacity equals b.Len(). It fails the same way New does.
// Cloning a nil Buffer yields an empty one built with default options.
func (b *Buffer) Clone() (*Buffer, error) {
	if b == nil {
		return newBuffer(0, buildOptions(nil))
	}
	c, err := newBuffer(b.length, b.opts)
	if err != nil {
		return nil, err
	}
	copy(c.r.data, b.Bytes())
	runtime.KeepAlive(b)
	return c, nil
}

// Destroy wipes the whole allocation, unlocks it and releases it. Unlock
// and release failures are logged, not returned: by then the contents are
// already gone. Calling Destroy more than once, or on a nil Buffer, is a
// no-op.
func (b *Buffer) Destroy() {
	if b == nil || b.r == nil {
		return
	}
	if b.hasCleanup {
		b.cleanup.Stop()
		b.hasCleanup = false
	}
	b.r.release(true)
	b.length = 0
}

// release wipes and unlocks the region, and hands it back to the
// allocator when free is set.
func (r *region) release(free bool) {
	if r.released {
		return
	}
	r.released = true

	memlock.Wipe(r.data)

	if r.locked {
		if err := r.locker.Unlock(r.data); err != nil {
			r.logger.Error("munlock failed", "size", len(r.data), "err", err)
		}
		r.locked = false
	}

	if free {
		if err := r.alloc.Free(r.data); err != nil {
			r.logger.Error("could not release buffer memory", "size", len(r.data), "err", err)
		}
	}
	r.data = nil
}

// collect runs when a Buffer became unreachable without Destroy. A slice
// from Bytes can still point into the region, so memory outside the Go
// heap is wiped and unlocked but left mapped: unmapping it would fault the
// next read.
func (r *region) collect() {
	_, onHeap := r.alloc.(heapAllocator)
	r.logger.Warn("secure buffer collected without Destroy", "size", len(r.data), "freed", onHeap)
	r.release(onHeap)
}

// String renders a redacted description, never the contents.
func (b *Buffer) String() string {
	if b.Cap() == 0 {
		return "securebuf empty"
	}
	return fmt.Sprintf("securebuf size: %d [redacted]", b.length)
}

// GoString makes %#v print the same redacted description as String.
func (b *Buffer) GoString() string {
	return b.String()
}

// Format makes every fmt verb, including %x and %q, print the redacted
// description.
func (b *Buffer) Format(f fmt.State, _ rune) {
	io.WriteString(f, b.String())
}

// LogValue makes slog record the redacted description.
func (b *Buffer) LogValue() slog.Value {
	return slog.StringValue(b.String())
}
