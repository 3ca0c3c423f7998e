package heap

import (
	"errors"
	"unsafe"
)

// ErrOutOfMemory is returned (wrapped) when the page provider declines to
// grant additional bytes. No partial state is left behind: the heap
// remains internally consistent after a failed extension.
var ErrOutOfMemory = errors.New("deltaheap: page provider refused additional pages")

// PageProvider is the external, sbrk-like collaborator the heap engine
// grows against. Implementations must return a pointer to a freshly
// mapped, contiguous region immediately following the prior high
// watermark; the region must be readable, writable, uninitialized, and
// persist for the engine's lifetime.
//
// PageProvider implementations live outside this package (see
// internal/pageprovider) so the engine never depends on how pages are
// actually sourced.
type PageProvider interface {
	// Sbrk grows the mapped region by n bytes and returns a pointer to the
	// start of the newly granted bytes. It returns an error if the grant
	// is refused; the caller must not assume any bytes were granted in
	// that case.
	Sbrk(n int) (unsafe.Pointer, error)

	// Hi returns the current high watermark: the address one past the
	// last byte ever granted by Sbrk.
	Hi() uintptr
}

// extendHeap grows the heap by at least words*WORD bytes, laying a new
// free block header/footer over the granted region and a fresh epilogue
// header past its end. The new block is coalesced with the prior tail
// block before being inserted into the free list, so extendHeap returns
// the payload pointer of the (possibly merged) result.
func (h *Heap) extendHeap(words int) (unsafe.Pointer, error) {
	size := words * wordSize
	if words%2 != 0 {
		size += wordSize
	}
	if size < MINIMUM {
		size = MINIMUM
	}

	bp, err := h.pp.Sbrk(size)
	if err != nil {
		return nil, errors.Join(ErrOutOfMemory, err)
	}

	setHeaderFooter(bp, size, false)
	putWord(hdrp(nextBlkp(bp)), pack(0, true)) // new epilogue

	h.logger.Debug("extended heap", "bytes", size, "hi", h.pp.Hi())

	return h.coalesce(bp), nil
}
