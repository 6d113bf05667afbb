package allocator

import "go.uber.org/zap"

// Check walks the whole heap and its free lists and reports the first
// broken invariant as an error matching ErrCorrupted.
func (a *Allocator) Check() error {
	data := a.data

	if tag := getWord(data, headerOf(a.prologue)); tag != pack(dwordSize, true) {
		return corrupted("bad prologue header %#x", tag)
	}
	if tag := getWord(data, a.prologue); tag != pack(dwordSize, true) {
		return corrupted("bad prologue footer %#x", tag)
	}

	free := make(map[uint32]bool)
	var usage uint64
	prevFree := false

	bp := nextBlock(data, a.prologue)
	for {
		if uint64(bp) > uint64(len(data)) {
			return corrupted("block at %d is past the end of the heap (%d)", bp, len(data))
		}
		size := blockSize(data, bp)
		if size == 0 {
			break
		}

		if bp%alignment != 0 {
			return corrupted("block at %d is not aligned", bp)
		}
		if size%alignment != 0 || size < minBlockSize {
			return corrupted("block at %d has bad size %d", bp, size)
		}
		if uint64(bp)+uint64(size) > uint64(len(data)) {
			return corrupted("block at %d with size %d overruns the heap (%d)", bp, size, len(data))
		}
		header := getWord(data, headerOf(bp))
		footer := getWord(data, footerOf(data, bp))
		if header != footer {
			return corrupted("block at %d: header %#x != footer %#x", bp, header, footer)
		}

		if unpackAllocated(header) {
			usage += uint64(size)
			prevFree = false
		} else {
			if prevFree {
				return corrupted("block at %d and its predecessor are both free", bp)
			}
			free[bp] = true
			prevFree = true
		}

		bp = nextBlock(data, bp)
	}

	if !isAllocated(data, bp) {
		return corrupted("epilogue at %d is not allocated", bp)
	}
	if uint64(bp) != uint64(len(data)) {
		return corrupted("epilogue at %d does not end the heap (%d)", bp, len(data))
	}
	if usage != a.memoryUsage {
		return corrupted("allocated bytes %d != memory usage %d", usage, a.memoryUsage)
	}

	seen := 0
	for i, head := range a.buckets {
		prev := Nil
		lastSize := uint32(0)
		for cur := head; cur != Nil; cur = succOf(data, cur) {
			indexed, ok := free[cur]
			if !ok {
				return corrupted("bucket %d: block at %d is not a free block", i, cur)
			}
			if !indexed {
				return corrupted("bucket %d: block at %d is indexed twice", i, cur)
			}
			free[cur] = false
			seen++

			size := blockSize(data, cur)
			if b := a.bucketOf(size); b != i {
				return corrupted("bucket %d: block at %d with size %d belongs to bucket %d", i, cur, size, b)
			}
			if size < lastSize {
				return corrupted("bucket %d: block at %d breaks ascending order", i, cur)
			}
			if p := predOf(data, cur); p != prev {
				return corrupted("bucket %d: block at %d has predecessor %d, expected %d", i, cur, p, prev)
			}
			prev = cur
			lastSize = size
		}
	}

	if seen != len(free) {
		for bp, missing := range free {
			if missing {
				return corrupted("free block at %d is not indexed", bp)
			}
		}
	}
	if seen != a.freeCount {
		return corrupted("free lists hold %d blocks, expected %d", seen, a.freeCount)
	}
	return nil
}

// DebugLogBlocks logs every block of the heap in address order.
func (a *Allocator) DebugLogBlocks(logger *zap.Logger) {
	data := a.data
	for bp := nextBlock(data, a.prologue); blockSize(data, bp) != 0; bp = nextBlock(data, bp) {
		size := blockSize(data, bp)
		if isAllocated(data, bp) {
			logger.Debug("block",
				zap.Uint32("offset", bp),
				zap.Uint32("size", size),
				zap.Bool("allocated", true),
			)
			continue
		}
		logger.Debug("block",
			zap.Uint32("offset", bp),
			zap.Uint32("size", size),
			zap.Bool("allocated", false),
			zap.Int("bucket", a.bucketOf(size)),
		)
	}
}
