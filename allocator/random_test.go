package allocator

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/QuangTung97/segfit/region"
)

type liveBlock struct {
	ptr     Ptr
	content []byte
}

func randomRequestSize(rng *rand.Rand) uint32 {
	if rng.Intn(10) == 0 {
		return uint32(1 + rng.Intn(8000))
	}
	return uint32(1 + rng.Intn(300))
}

func fillRandom(rng *rand.Rand, a *Allocator, p Ptr, size uint32) []byte {
	content := make([]byte, size)
	rng.Read(content)
	copy(a.Payload(p), content)
	return content
}

func assertLiveBlocks(t *testing.T, a *Allocator, live []liveBlock) {
	t.Helper()

	sorted := make([]liveBlock, len(live))
	copy(sorted, live)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ptr < sorted[j].ptr })

	for i, b := range sorted {
		require.Equal(t, uint32(0), b.ptr%alignment, "unaligned block at %d", b.ptr)
		require.GreaterOrEqual(t, a.UsableSize(b.ptr), uint32(len(b.content)))
		require.Equal(t, b.content, a.Payload(b.ptr)[:len(b.content)], "payload of block at %d changed", b.ptr)

		if i+1 < len(sorted) {
			end := b.ptr + a.UsableSize(b.ptr)
			require.LessOrEqual(t, end, sorted[i+1].ptr, "block at %d overlaps block at %d", b.ptr, sorted[i+1].ptr)
		}
	}
}

func TestAllocator_RandomOperations(t *testing.T) {
	table := []struct {
		name string
		seed int64
		conf Config
	}{
		{name: "default", seed: 42, conf: DefaultConfig()},
		{name: "few-buckets", seed: 7, conf: Config{ChunkSize: 256, NumBuckets: 4}},
		{name: "single-bucket", seed: 1234, conf: Config{ChunkSize: 1024, NumBuckets: 1}},
	}

	for _, e := range table {
		t.Run(e.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(e.seed))
			a, err := New(region.NewMemory(1<<24), e.conf)
			require.NoError(t, err)

			var live []liveBlock
			for step := 0; step < 3000; step++ {
				switch op := rng.Intn(10); {
				case op < 5 || len(live) == 0:
					size := randomRequestSize(rng)
					p, err := a.Allocate(size)
					require.NoError(t, err, "step %d", step)
					live = append(live, liveBlock{ptr: p, content: fillRandom(rng, a, p, size)})

				case op < 8:
					i := rng.Intn(len(live))
					a.Deallocate(live[i].ptr)
					live[i] = live[len(live)-1]
					live = live[:len(live)-1]

				default:
					i := rng.Intn(len(live))
					size := randomRequestSize(rng)
					p, err := a.Reallocate(live[i].ptr, size)
					require.NoError(t, err, "step %d", step)

					old := live[i].content
					if uint32(len(old)) > size {
						old = old[:size]
					}
					require.Equal(t, old, a.Payload(p)[:len(old)], "step %d", step)
					live[i] = liveBlock{ptr: p, content: fillRandom(rng, a, p, size)}
				}

				require.NoError(t, a.Check(), "step %d", step)
			}

			assertLiveBlocks(t, a, live)

			var usage uint64
			for _, b := range live {
				usage += uint64(a.UsableSize(b.ptr) + overhead)
			}
			assert.Equal(t, usage, a.GetMemUsage())

			for _, b := range live {
				a.Deallocate(b.ptr)
			}
			assert.Equal(t, uint64(0), a.GetMemUsage())
			assert.Equal(t, 1, a.FreeBlocks())
			assert.NoError(t, a.Check())
		})
	}
}

func TestAllocator_RandomOperations_UntilExhausted(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	a, err := New(region.NewMemory(1<<16), DefaultConfig())
	require.NoError(t, err)

	var live []liveBlock
	failures := 0
	for step := 0; step < 2000; step++ {
		if rng.Intn(3) == 0 && len(live) > 0 {
			i := rng.Intn(len(live))
			a.Deallocate(live[i].ptr)
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
		} else {
			size := randomRequestSize(rng)
			p, err := a.Allocate(size)
			if err != nil {
				require.True(t, xerrors.Is(err, ErrOutOfMemory), "step %d", step)
				failures++
			} else {
				live = append(live, liveBlock{ptr: p, content: fillRandom(rng, a, p, size)})
			}
		}
		require.NoError(t, a.Check(), "step %d", step)
	}

	assert.Greater(t, failures, 0)
	assert.LessOrEqual(t, a.HeapSize(), uint32(1<<16))
	assertLiveBlocks(t, a, live)
}
