package region

import "golang.org/x/xerrors"

// ErrLimitExceeded is returned when the region cannot grow any further.
var ErrLimitExceeded = xerrors.New("region: limit exceeded")

// Region is a contiguous, growable byte range. It never shrinks.
type Region interface {
	// Extend grows the region by exactly n bytes and returns the offset of
	// the first new byte (the old end of the region).
	Extend(n uint32) (uint32, error)

	// Bytes returns the whole region, len(Bytes()) == Size().
	Bytes() []byte

	// Size ...
	Size() uint32
}

func checkExtend(size uint32, n uint32, limit uint32) error {
	if uint64(size)+uint64(n) > uint64(limit) {
		return xerrors.Errorf("extend %d bytes at %d (limit %d): %w", n, size, limit, ErrLimitExceeded)
	}
	return nil
}

const maxInt = uint64(^uint(0) >> 1)

// mappingLength converts limit to a mapping length, rejecting limits that
// do not fit in an int of at most maxLen.
func mappingLength(limit uint32, maxLen uint64) (int, error) {
	if uint64(limit) > maxLen {
		return 0, xerrors.Errorf("mapping of %d bytes exceeds platform maximum %d: %w", limit, maxLen, ErrLimitExceeded)
	}
	return int(limit), nil
}
