package securebuf

import (
	"log/slog"

	"github.com/carved4/go-securebuf/internal/memlock"
)

// Option configures how a Buffer obtains, pins and reports on its memory.
type Option func(*options)

type options struct {
	locker memlock.Locker
	alloc  Allocator
	logger *slog.Logger
}

// WithLocker replaces the OS memory locker. Tests use it to observe lock
// and unlock calls; memlock.Noop disables pinning.
func WithLocker(l memlock.Locker) Option {
	return func(o *options) {
		o.locker = l
	}
}

// WithAllocator selects where fresh backing memory comes from. Buffers
// built with FromOwned always keep the caller's memory regardless.
func WithAllocator(a Allocator) Option {
	return func(o *options) {
		o.alloc = a
	}
}

// WithLogger sets the logger used for failures that cannot be returned,
// such as an unlock error during Destroy.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	o := options{
		locker: memlock.System(),
		alloc:  Heap(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.locker == nil {
		o.locker = memlock.System()
	}
	if o.alloc == nil {
		o.alloc = Heap()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
