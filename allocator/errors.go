package allocator

import (
	"fmt"

	"golang.org/x/xerrors"
)

var (
	// ErrOutOfMemory indicates the heap could not obtain enough space.
	ErrOutOfMemory = xerrors.New("allocator: out of memory")

	// ErrCorrupted is returned by Check when a heap invariant does not hold.
	ErrCorrupted = xerrors.New("allocator: heap corrupted")
)

// outOfMemoryError matches ErrOutOfMemory and unwraps to the region error
// that caused it.
type outOfMemoryError struct {
	request uint32
	err     error
}

func (e *outOfMemoryError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("%v: request of %d bytes", ErrOutOfMemory, e.request)
	}
	return fmt.Sprintf("%v: request of %d bytes: %v", ErrOutOfMemory, e.request, e.err)
}

func (e *outOfMemoryError) Is(target error) bool {
	return target == ErrOutOfMemory
}

func (e *outOfMemoryError) Unwrap() error {
	return e.err
}

func corrupted(format string, args ...interface{}) error {
	return xerrors.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrCorrupted)
}
