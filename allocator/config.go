package allocator

import "go.uber.org/zap"

const (
	defaultChunkSize  = 1 << 12
	defaultNumBuckets = 20
	maxNumBuckets     = 32
)

// Config ...
type Config struct {
	// ChunkSize is the minimum number of bytes requested from the region
	// whenever the heap has to grow.
	ChunkSize uint32

	// NumBuckets is the number of segregated free lists. Bucket i holds
	// free blocks with size in [2^i, 2^(i+1)), the last one everything larger.
	NumBuckets int

	Logger *zap.Logger
}

// DefaultConfig ...
func DefaultConfig() Config {
	return Config{
		ChunkSize:  defaultChunkSize,
		NumBuckets: defaultNumBuckets,
	}
}

func allocatorValidateConfig(conf Config) {
	if conf.ChunkSize == 0 {
		panic("ChunkSize must > 0")
	}
	if conf.ChunkSize%alignment != 0 {
		panic("ChunkSize must be a multiple of the alignment")
	}
	if conf.NumBuckets <= 0 {
		panic("NumBuckets must > 0")
	}
	if conf.NumBuckets > maxNumBuckets {
		panic("NumBuckets must <= 32")
	}
}
