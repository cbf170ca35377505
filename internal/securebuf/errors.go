package securebuf

import (
	"errors"
	"fmt"
)

var (
	// ErrLockFailure matches every *LockError via errors.Is.
	ErrLockFailure = errors.New("securebuf: memory lock failed")

	// ErrInvalidSize is returned by New for a negative size.
	ErrInvalidSize = errors.New("securebuf: invalid size")
)

// LockError reports that the operating system refused to pin a buffer's
// memory, most often because RLIMIT_MEMLOCK is exhausted.
type LockError struct {
	Op   string
	Size int
	Err  error
}

func (e *LockError) Error() string {
	return fmt.Sprintf("securebuf: %s %d bytes: %v", e.Op, e.Size, e.Err)
}

func (e *LockError) Unwrap() error {
	return e.Err
}

func (e *LockError) Is(target error) bool {
	return target == ErrLockFailure
}
