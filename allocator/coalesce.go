package allocator

// coalesce merges the free block at bp with its free neighbours and
// returns the payload offset of the merged block. Neighbours are removed
// from the free lists; the result itself is not inserted.
func (a *Allocator) coalesce(bp uint32) uint32 {
	data := a.data
	prevFree := !prevAllocated(data, bp)
	next := nextBlock(data, bp)
	nextFree := !isAllocated(data, next)
	size := blockSize(data, bp)

	switch {
	case !prevFree && !nextFree:
		return bp

	case !prevFree && nextFree:
		a.removeFree(next)
		size += blockSize(data, next)
		writeTags(data, bp, size, false)

	case prevFree && !nextFree:
		prev := prevBlock(data, bp)
		a.removeFree(prev)
		size += blockSize(data, prev)
		writeTags(data, prev, size, false)
		bp = prev

	default:
		prev := prevBlock(data, bp)
		a.removeFree(prev)
		a.removeFree(next)
		size += blockSize(data, prev) + blockSize(data, next)
		writeTags(data, prev, size, false)
		bp = prev
	}

	a.stats.Coalesces++
	return bp
}
