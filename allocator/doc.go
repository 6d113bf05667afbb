// Package allocator implements a segregated-fit heap allocator over a
// single growable region.
//
// Every block starts with a header word and ends with a footer word, both
// holding the block size with the allocated flag in the low bit. Free
// blocks reuse their first two payload words as predecessor and successor
// offsets in one of NumBuckets free lists; bucket i holds sizes in
// [2^i, 2^(i+1)) and is kept in ascending size order, so the first block
// found large enough is also the smallest one of its bucket.
//
// The heap is bounded by an allocated prologue block and a zero sized
// epilogue header. When no free block fits, the region is extended by at
// least ChunkSize bytes and the new space is coalesced with a free block
// ending at the old epilogue.
//
// Pointers handed out are offsets into the region (Ptr); offset 0 is never
// a block and serves as Nil.
package allocator
