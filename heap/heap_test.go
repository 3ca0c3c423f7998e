package heap

import (
	"testing"
	"unsafe"

	"github.com/kmarq/deltaheap/internal/pageprovider"
	"github.com/stretchr/testify/require"
)

func newTestHeap(t *testing.T) *Heap {
	t.Helper()
	pp := pageprovider.NewSliceProvider(1 << 20) // 1MiB, plenty for these traces
	h, err := New(pp)
	require.NoError(t, err)
	return h
}

func writeByte(p unsafe.Pointer, off int, v byte) {
	*(*byte)(unsafe.Add(p, off)) = v
}

func readByte(p unsafe.Pointer, off int) byte {
	return *(*byte)(unsafe.Add(p, off))
}

func memset(p unsafe.Pointer, v byte, n int) {
	for i := 0; i < n; i++ {
		writeByte(p, i, v)
	}
}

func TestSmallAllocAndFree(t *testing.T) {
	h := newTestHeap(t)

	a := h.Alloc(1)
	require.NotNil(t, a)
	require.Zero(t, uintptr(a)%8)

	h.Free(a)
	require.Empty(t, h.Check(false))
}

// Two adjacent allocations, freed in order, coalesce into one free block.
func TestTwoAllocsCoalesceOnFree(t *testing.T) {
	h := newTestHeap(t)

	a := h.Alloc(16)
	b := h.Alloc(16)
	require.NotNil(t, a)
	require.NotNil(t, b)

	h.Free(a)
	h.Free(b)

	require.Empty(t, h.Check(false))
	// After both frees, the block starting at freeHead must span at least
	// the two claimed blocks (no fragmentation left behind).
	require.GreaterOrEqual(t, blockSize(h.freeHead), 2*(alignUp8(16)+dwordSize))
}

// A second large allocation forces the heap to extend past its initial
// CHUNKSIZE grant.
func TestLargeAllocTriggersExtension(t *testing.T) {
	h := newTestHeap(t)

	a := h.Alloc(4000)
	b := h.Alloc(4000)
	require.NotNil(t, a)
	require.NotNil(t, b)
	require.Empty(t, h.Check(false))
}

// Three-way coalescing: freeing the middle block last should still merge
// all three back into one.
func TestThreeWayCoalesce(t *testing.T) {
	h := newTestHeap(t)

	a := h.Alloc(24)
	b := h.Alloc(24)
	c := h.Alloc(24)
	require.NotNil(t, a)
	require.NotNil(t, b)
	require.NotNil(t, c)

	h.Free(a)
	h.Free(c)
	h.Free(b)

	require.Empty(t, h.Check(false))
}

// Realloc growth preserves the original payload bytes.
func TestReallocPreservesData(t *testing.T) {
	h := newTestHeap(t)

	a := h.Alloc(100)
	require.NotNil(t, a)
	memset(a, 0xAB, 100)

	b := h.Realloc(a, 200)
	require.NotNil(t, b)
	for i := 0; i < 100; i++ {
		require.Equal(t, byte(0xAB), readByte(b, i), "byte %d", i)
	}
	require.Empty(t, h.Check(false))
}

// Calloc returns a zeroed region of at least n*s bytes.
func TestCallocZeroes(t *testing.T) {
	h := newTestHeap(t)

	a := h.Calloc(10, 8)
	require.NotNil(t, a)
	for i := 0; i < 80; i++ {
		require.Equal(t, byte(0), readByte(a, i), "byte %d", i)
	}
}

// realloc(p, size(p)) returns p unchanged.
func TestReallocSameSizeReturnsSamePointer(t *testing.T) {
	h := newTestHeap(t)

	a := h.Alloc(64)
	require.NotNil(t, a)

	b := h.Realloc(a, 64)
	require.Equal(t, a, b)
}

func TestAllocZeroReturnsNil(t *testing.T) {
	h := newTestHeap(t)
	require.Nil(t, h.Alloc(0))
}

func TestFreeNilIsNoop(t *testing.T) {
	h := newTestHeap(t)
	require.NotPanics(t, func() { h.Free(nil) })
}

func TestReallocNilBehavesAsAlloc(t *testing.T) {
	h := newTestHeap(t)
	p := h.Realloc(nil, 32)
	require.NotNil(t, p)
}

func TestReallocZeroSizeFreesAndReturnsNil(t *testing.T) {
	h := newTestHeap(t)
	p := h.Alloc(32)
	require.NotNil(t, p)

	got := h.Realloc(p, 0)
	require.Nil(t, got)
	require.Empty(t, h.Check(false))
}

func TestCallocOverflowGuard(t *testing.T) {
	h := newTestHeap(t)
	require.Nil(t, h.Calloc(1<<40, 1<<40))
}

func TestCallocZeroArgsReturnsNil(t *testing.T) {
	h := newTestHeap(t)
	require.Nil(t, h.Calloc(0, 8))
	require.Nil(t, h.Calloc(8, 0))
}

// Every payload pointer alloc/realloc/calloc ever return must be 8-byte
// aligned, across a mix of odd sizes.
func TestAllocationsAreAligned(t *testing.T) {
	h := newTestHeap(t)
	for _, sz := range []int{1, 3, 7, 9, 17, 33, 100, 4001} {
		p := h.Alloc(sz)
		require.NotNil(t, p)
		require.Zero(t, uintptr(p)%8, "size %d", sz)
	}
}

// free(alloc(n)) does not change the heap's free-block count once
// coalescing has run.
func TestFreeAllocRoundTripsCleanly(t *testing.T) {
	h := newTestHeap(t)
	before := countFreeBlocks(h)

	p := h.Alloc(128)
	require.NotNil(t, p)
	h.Free(p)

	after := countFreeBlocks(h)
	require.Equal(t, before, after)
	require.Empty(t, h.Check(false))
}

func countFreeBlocks(h *Heap) int {
	n := 0
	for bp := h.freeHead; !isAllocated(bp); bp = getSucc(bp) {
		n++
	}
	return n
}
