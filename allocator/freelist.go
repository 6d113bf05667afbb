package allocator

// bucketOf returns the index of the free list holding blocks of the given
// size: the largest i with 2^i <= size, clamped to the last bucket.
func bucketOf(size uint32, numBuckets int) int {
	index := 0
	for power := uint64(2); power <= uint64(size); power <<= 1 {
		index++
	}
	if index >= numBuckets {
		index = numBuckets - 1
	}
	return index
}

func (a *Allocator) bucketOf(size uint32) int {
	return bucketOf(size, len(a.buckets))
}

// insertFree links a free block into its bucket, keeping the bucket in
// ascending size order. The block is placed before the first entry whose
// size is not smaller than its own.
func (a *Allocator) insertFree(bp uint32) {
	data := a.data
	size := blockSize(data, bp)
	root := &a.buckets[a.bucketOf(size)]

	prev := Nil
	cur := *root
	for cur != Nil && blockSize(data, cur) < size {
		prev = cur
		cur = succOf(data, cur)
	}

	setPred(data, bp, prev)
	setSucc(data, bp, cur)
	if cur != Nil {
		setPred(data, cur, bp)
	}
	if prev != Nil {
		setSucc(data, prev, bp)
	} else {
		*root = bp
	}
	a.freeCount++
}

// removeFree unlinks a free block from the bucket matching its current
// size. The size must not have changed since insertFree.
func (a *Allocator) removeFree(bp uint32) {
	data := a.data
	root := &a.buckets[a.bucketOf(blockSize(data, bp))]

	pred := predOf(data, bp)
	succ := succOf(data, bp)
	if succ != Nil {
		setPred(data, succ, pred)
	}
	if pred != Nil {
		setSucc(data, pred, succ)
	} else {
		*root = succ
	}
	a.freeCount--
}

// findFirstFit scans the buckets starting from the one matching asize and
// returns the first block large enough. Buckets are sorted, so this is the
// smallest sufficient block of the first bucket that has one.
func (a *Allocator) findFirstFit(asize uint32) (uint32, bool) {
	data := a.data
	for i := a.bucketOf(asize); i < len(a.buckets); i++ {
		for bp := a.buckets[i]; bp != Nil; bp = succOf(data, bp) {
			if blockSize(data, bp) >= asize {
				return bp, true
			}
		}
	}
	return Nil, false
}

func (a *Allocator) contentOfList(bucket int) []uint32 {
	var result []uint32
	for bp := a.buckets[bucket]; bp != Nil; bp = succOf(a.data, bp) {
		result = append(result, bp)
	}
	return result
}
