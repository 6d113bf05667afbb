package allocator

import "encoding/binary"

// Ptr is the arena offset of a block's payload. Nil never denotes a block.
type Ptr = uint32

// Nil ...
const Nil Ptr = 0

const (
	wordSize     = 8
	dwordSize    = 2 * wordSize
	alignment    = dwordSize
	minBlockSize = 4 * wordSize

	// header + footer
	overhead = dwordSize

	allocatedBit = uint64(0x1)
	sizeMask     = ^uint64(0x7)
)

// A free block stores its header, footer and both list links in its own
// bytes, so the minimum block must hold four words. Allocated blocks keep
// their footer too, which requires the payload to end before it.
const _ = uint(minBlockSize - 4*wordSize)
const _ = uint(minBlockSize - overhead - 2*wordSize)

func getWord(data []byte, off uint32) uint64 {
	return binary.LittleEndian.Uint64(data[off : off+wordSize])
}

func putWord(data []byte, off uint32, v uint64) {
	binary.LittleEndian.PutUint64(data[off:off+wordSize], v)
}

func pack(size uint32, allocated bool) uint64 {
	v := uint64(size)
	if allocated {
		v |= allocatedBit
	}
	return v
}

func unpackSize(tag uint64) uint32 {
	return uint32(tag & sizeMask)
}

func unpackAllocated(tag uint64) bool {
	return tag&allocatedBit != 0
}

func headerOf(bp uint32) uint32 {
	return bp - wordSize
}

func blockSize(data []byte, bp uint32) uint32 {
	return unpackSize(getWord(data, headerOf(bp)))
}

func isAllocated(data []byte, bp uint32) bool {
	return unpackAllocated(getWord(data, headerOf(bp)))
}

func footerOf(data []byte, bp uint32) uint32 {
	return bp + blockSize(data, bp) - dwordSize
}

func nextBlock(data []byte, bp uint32) uint32 {
	return bp + blockSize(data, bp)
}

// prevBlock reads the size of the previous block from its footer, which
// sits right before bp's header.
func prevBlock(data []byte, bp uint32) uint32 {
	return bp - unpackSize(getWord(data, bp-dwordSize))
}

func prevAllocated(data []byte, bp uint32) bool {
	return unpackAllocated(getWord(data, bp-dwordSize))
}

// writeTags writes the same boundary tag into the header and footer of a
// block of the given size starting at bp.
func writeTags(data []byte, bp uint32, size uint32, allocated bool) {
	tag := pack(size, allocated)
	putWord(data, headerOf(bp), tag)
	putWord(data, bp+size-dwordSize, tag)
}

// Free-list links live in the first two payload words of a free block.

func predOf(data []byte, bp uint32) uint32 {
	return uint32(getWord(data, bp))
}

func succOf(data []byte, bp uint32) uint32 {
	return uint32(getWord(data, bp+wordSize))
}

func setPred(data []byte, bp uint32, pred uint32) {
	putWord(data, bp, uint64(pred))
}

func setSucc(data []byte, bp uint32, succ uint32) {
	putWord(data, bp+wordSize, uint64(succ))
}

// adjustSize returns the block size needed to serve a request of size
// payload bytes: room for header and footer, rounded up to the alignment
// and never below the minimum block size.
func adjustSize(size uint32) (uint32, bool) {
	if size <= dwordSize {
		return minBlockSize, true
	}
	asize := dwordSize * ((uint64(size) + overhead + dwordSize - 1) / dwordSize)
	if asize > uint64(maxBlockSize) {
		return 0, false
	}
	return uint32(asize), true
}

// maxBlockSize is the largest aligned size a 32-bit offset can describe.
const maxBlockSize = uint32(0xFFFFFFFF) &^ (alignment - 1)
