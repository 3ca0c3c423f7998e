package heap

import (
	"errors"
	"log/slog"
	"math"
	"unsafe"
)

// Heap is a first-fit explicit-free-list allocator over a PageProvider's
// contiguous, growable byte region.
//
// The zero value is not usable; construct a Heap with New.
//
// WARNING: Heap is NOT goroutine-safe. Concurrent access from multiple
// goroutines is not supported and may lead to heap corruption. It is the
// caller's responsibility to synchronize access when sharing a Heap across
// goroutines.
type Heap struct {
	pp PageProvider

	// lo is the prologue's payload pointer: the permanent, address-order
	// start of the block chain. Constant for the Heap's lifetime.
	lo unsafe.Pointer

	// freeHead is the payload pointer of the free block most recently
	// inserted into the list (by Free, a split remainder, or an
	// extension), or the prologue when no block is free. It always points
	// at a live block: the prologue seeds it at New and is never itself
	// removed from the list.
	freeHead unsafe.Pointer

	logger *slog.Logger
}

// New creates a Heap backed by pp, laying down the prologue and epilogue
// sentinels and performing the initial CHUNKSIZE extension. It fails if
// either initial page request is refused.
func New(pp PageProvider) (*Heap, error) {
	h := &Heap{pp: pp, logger: discardLogger}

	// Request exactly the bytes laid out below: one padding word, the
	// prologue block, and the epilogue header. The provider's watermark
	// must land exactly on the epilogue so the first extendHeap call
	// starts address-contiguous with it instead of leaving a gap behind a
	// stale epilogue.
	base, err := pp.Sbrk(dwordSize + MINIMUM)
	if err != nil {
		return nil, errors.Join(ErrOutOfMemory, err)
	}

	putWord(base, 0) // alignment padding

	prologue := unsafe.Add(base, dwordSize)
	putWord(hdrp(prologue), pack(MINIMUM, true))
	setPred(prologue, nil)
	setSucc(prologue, nil)
	putWord(ftrp(prologue), pack(MINIMUM, true))
	putWord(hdrp(nextBlkp(prologue)), pack(0, true)) // epilogue, at the watermark

	h.lo = prologue
	h.freeHead = prologue

	if _, err := h.extendHeap(CHUNKSIZE / wordSize); err != nil {
		return nil, err
	}
	return h, nil
}

// Alloc returns an 8-byte-aligned pointer to a payload of at least size
// bytes, or nil if size is 0 or the heap is out of memory.
func (h *Heap) Alloc(size int) unsafe.Pointer {
	if size <= 0 {
		return nil
	}

	asize := alignUp8(size) + dwordSize
	if asize < MINIMUM {
		asize = MINIMUM
	}

	if bp := h.findFit(asize); bp != nil {
		h.place(bp, asize)
		return bp
	}

	extendBytes := asize
	if CHUNKSIZE > extendBytes {
		extendBytes = CHUNKSIZE
	}
	bp, err := h.extendHeap(extendBytes / wordSize)
	if err != nil {
		return nil
	}
	h.place(bp, asize)
	return bp
}

// Free releases the block pointed to by p, which must have been returned
// by Alloc, Realloc, or Calloc on this Heap and not yet freed. Freeing nil
// is a no-op. Freeing an invalid or already-freed pointer is undefined
// behavior; Free does not defensively detect it.
func (h *Heap) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	setHeaderFooter(p, blockSize(p), false)
	h.coalesce(p)
}

// Realloc resizes the block at p to size bytes, preserving its contents up
// to the smaller of the old and new sizes. p == nil behaves as Alloc(size);
// size <= 0 behaves as Free(p) and returns nil.
func (h *Heap) Realloc(p unsafe.Pointer, size int) unsafe.Pointer {
	if p == nil {
		return h.Alloc(size)
	}
	if size <= 0 {
		h.Free(p)
		return nil
	}

	old := blockSize(p)
	asize := alignUp8(size) + dwordSize
	if asize < MINIMUM {
		asize = MINIMUM
	}

	if asize == old {
		return p
	}

	if asize < old {
		if old-asize <= MINIMUM {
			// Remainder too small to split off; keep the whole block.
			return p
		}
		setHeaderFooter(p, asize, true)
		rest := nextBlkp(p)
		setHeaderFooter(rest, old-asize, true)
		h.Free(rest)
		return p
	}

	newp := h.Alloc(size)
	if newp == nil {
		return nil
	}
	copyPayload := size
	if old-dwordSize < copyPayload {
		copyPayload = old - dwordSize
	}
	copyBytes(newp, p, copyPayload)
	h.Free(p)
	return newp
}

// Calloc allocates space for nmemb elements of size bytes each and zeroes
// it. It returns nil if nmemb*size overflows, or on out-of-memory.
func (h *Heap) Calloc(nmemb, size int) unsafe.Pointer {
	if nmemb <= 0 || size <= 0 {
		return nil
	}
	if size > math.MaxInt/nmemb {
		return nil // multiplication overflow guard
	}

	p := h.Alloc(nmemb * size)
	if p == nil {
		return nil
	}
	zeroBytes(p, nmemb*size)
	return p
}

func copyBytes(dst, src unsafe.Pointer, n int) {
	if n <= 0 {
		return
	}
	copy(unsafe.Slice((*byte)(dst), n), unsafe.Slice((*byte)(src), n))
}

func zeroBytes(p unsafe.Pointer, n int) {
	clear(unsafe.Slice((*byte)(p), n))
}
