package allocator

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/QuangTung97/segfit/region"
)

// Allocator is a segregated-fit heap living in a single region. Blocks
// carry boundary tags (header and footer) and free blocks are linked into
// size-ordered buckets through their own payload bytes.
//
// An Allocator is not safe for concurrent use.
type Allocator struct {
	region region.Region
	data   []byte
	logger *zap.Logger

	chunkSize uint32

	// heapBase is the region offset where the heap starts, prologue is the
	// payload offset of the prologue block.
	heapBase uint32
	prologue uint32

	buckets   []uint32
	freeCount int

	memoryUsage uint64
	stats       Stats
}

// Stats ...
type Stats struct {
	Allocations   int
	Deallocations int
	Reallocations int
	Extends       int
	Splits        int
	Coalesces     int
}

// New initializes a heap at the current end of r. The region must not be
// extended by anyone else while the Allocator is in use.
func New(r region.Region, conf Config) (*Allocator, error) {
	allocatorValidateConfig(conf)

	logger := conf.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &Allocator{
		region:    r,
		logger:    logger,
		chunkSize: conf.ChunkSize,
		buckets:   make([]uint32, conf.NumBuckets),
	}
	for i := range a.buckets {
		a.buckets[i] = Nil
	}

	if err := a.initialize(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Allocator) initialize() error {
	base := a.region.Size()
	pad := (alignment - base%alignment) % alignment

	start, err := a.region.Extend(pad + 4*wordSize)
	if err != nil {
		return &outOfMemoryError{request: pad + 4*wordSize, err: err}
	}
	a.data = a.region.Bytes()

	start += pad
	putWord(a.data, start, 0)                                // alignment padding
	putWord(a.data, start+wordSize, pack(dwordSize, true))   // prologue header
	putWord(a.data, start+2*wordSize, pack(dwordSize, true)) // prologue footer
	putWord(a.data, start+3*wordSize, pack(0, true))         // epilogue header

	a.heapBase = base
	a.prologue = start + 2*wordSize

	if _, err := a.extend(a.chunkSize / wordSize); err != nil {
		return err
	}

	a.logger.Debug("heap initialized",
		zap.Uint32("base", a.heapBase),
		zap.Uint32("chunkSize", a.chunkSize),
		zap.Int("numBuckets", len(a.buckets)),
	)
	return nil
}

// extend grows the heap by the given number of words (rounded up to an
// even count) and returns the resulting free block, already coalesced with
// a free block before the old epilogue and inserted into its bucket.
func (a *Allocator) extend(words uint32) (uint32, error) {
	if words%2 != 0 {
		words++
	}
	size := words * wordSize

	bp, err := a.region.Extend(size)
	if err != nil {
		a.logger.Warn("heap extension refused",
			zap.Uint32("bytes", size),
			zap.Uint32("heapSize", a.HeapSize()),
			zap.Error(err),
		)
		return Nil, &outOfMemoryError{request: size, err: err}
	}
	a.data = a.region.Bytes()

	// The old epilogue header becomes the header of the new block.
	writeTags(a.data, bp, size, false)
	putWord(a.data, headerOf(nextBlock(a.data, bp)), pack(0, true))

	a.stats.Extends++
	a.logger.Debug("heap extended",
		zap.Uint32("bytes", size),
		zap.Uint32("heapSize", a.HeapSize()),
	)

	bp = a.coalesce(bp)
	a.insertFree(bp)
	return bp, nil
}

// place marks asize bytes of the free block bp as allocated. The block
// must already be out of the free lists. A remainder of at least the
// minimum block size is split off and returned to the free lists.
func (a *Allocator) place(bp uint32, asize uint32) {
	data := a.data
	csize := blockSize(data, bp)

	if csize-asize >= minBlockSize {
		writeTags(data, bp, asize, true)
		rest := bp + asize
		writeTags(data, rest, csize-asize, false)
		rest = a.coalesce(rest)
		a.insertFree(rest)

		a.stats.Splits++
		a.memoryUsage += uint64(asize)
		return
	}

	writeTags(data, bp, csize, true)
	a.memoryUsage += uint64(csize)
}

// Allocate returns the payload offset of a block with at least size usable
// bytes. A zero size yields Nil without error.
func (a *Allocator) Allocate(size uint32) (Ptr, error) {
	if size == 0 {
		return Nil, nil
	}

	asize, ok := adjustSize(size)
	if !ok {
		return Nil, &outOfMemoryError{request: size}
	}

	a.stats.Allocations++

	if bp, ok := a.findFirstFit(asize); ok {
		a.removeFree(bp)
		a.place(bp, asize)
		return bp, nil
	}

	extendSize := asize
	if extendSize < a.chunkSize {
		extendSize = a.chunkSize
	}
	if _, err := a.extend(extendSize / wordSize); err != nil {
		return Nil, err
	}

	bp, ok := a.findFirstFit(asize)
	if !ok {
		panic(fmt.Sprintf("allocator: no fit for %d bytes right after extending the heap", asize))
	}
	a.removeFree(bp)
	a.place(bp, asize)
	return bp, nil
}

// Deallocate returns the block at p to the heap. Deallocating Nil does
// nothing. p must have been returned by Allocate or Reallocate and not yet
// deallocated; this is not checked.
func (a *Allocator) Deallocate(p Ptr) {
	if p == Nil {
		return
	}

	data := a.data
	size := blockSize(data, p)
	writeTags(data, p, size, false)

	a.stats.Deallocations++
	a.memoryUsage -= uint64(size)

	p = a.coalesce(p)
	a.insertFree(p)
}

// Reallocate moves the contents of p into a new block of size bytes and
// deallocates p. The block is always moved, even when it could grow in
// place. Reallocate(Nil, n) is Allocate(n). Whenever the result is Nil,
// including Reallocate(p, 0), p is left allocated and untouched.
func (a *Allocator) Reallocate(p Ptr, size uint32) (Ptr, error) {
	if p == Nil {
		return a.Allocate(size)
	}

	newPtr, err := a.Allocate(size)
	if err != nil {
		return Nil, err
	}
	if newPtr == Nil {
		return Nil, nil
	}
	a.stats.Reallocations++

	n := a.UsableSize(p)
	if size < n {
		n = size
	}
	copy(a.data[newPtr:newPtr+n], a.data[p:p+n])

	a.Deallocate(p)
	return newPtr, nil
}

// UsableSize returns the number of payload bytes of the allocated block p.
func (a *Allocator) UsableSize(p Ptr) uint32 {
	return blockSize(a.data, p) - overhead
}

// Payload returns the caller-owned bytes of the allocated block p. The
// slice is only valid until p is deallocated or reallocated.
func (a *Allocator) Payload(p Ptr) []byte {
	end := p + a.UsableSize(p)
	return a.data[p:end:end]
}

// GetMemUsage returns the bytes held by allocated blocks, metadata included.
func (a *Allocator) GetMemUsage() uint64 {
	return a.memoryUsage
}

// HeapSize returns the bytes obtained from the region so far.
func (a *Allocator) HeapSize() uint32 {
	return a.region.Size() - a.heapBase
}

// FreeBlocks ...
func (a *Allocator) FreeBlocks() int {
	return a.freeCount
}

// GetStats ...
func (a *Allocator) GetStats() Stats {
	return a.stats
}
