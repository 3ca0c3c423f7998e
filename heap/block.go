// Package heap implements a first-fit, explicit-free-list dynamic memory
// allocator over a contiguous, monotonically growable byte region obtained
// from a PageProvider.
//
// WARNING: Heap is NOT goroutine-safe. Concurrent access from multiple
// goroutines is not supported and may lead to heap corruption. It is the
// caller's responsibility to synchronize access when sharing a Heap across
// goroutines.
package heap

import "unsafe"

// Word sizes, per the block-layout contract: every header/footer word is
// WORD bytes, every payload pointer is aligned to DWORD bytes.
const (
	wordSize  = 4
	dwordSize = 8

	// MINIMUM is the smallest permitted block size: header(4) + pred(8) +
	// succ(8) + footer(4).
	MINIMUM = 24

	// CHUNKSIZE is the minimum increment by which the heap is grown.
	CHUNKSIZE = 4096

	allocBit uint32 = 0x1
)

// pack encodes a block size and allocation bit into a single header word.
// size must already be a multiple of 8.
func pack(size int, alloc bool) uint32 {
	w := uint32(size)
	if alloc {
		w |= allocBit
	}
	return w
}

func sizeOf(w uint32) int   { return int(w &^ allocBit) }
func allocOf(w uint32) bool { return w&allocBit == allocBit }

// alignUp8 rounds size up to the nearest multiple of 8.
func alignUp8(size int) int {
	return (size + 7) &^ 7
}

// getWord/putWord read and write a WORD at an arbitrary heap address. They
// are the only two functions in the package that dereference a raw
// unsafe.Pointer as a header word; every other accessor below is built on
// top of them.
//
//go:inline
func getWord(p unsafe.Pointer) uint32 {
	return *(*uint32)(p)
}

//go:inline
func putWord(p unsafe.Pointer, v uint32) {
	*(*uint32)(p) = v
}

// hdrp returns the address of bp's header: one word below the payload.
//
//go:inline
func hdrp(bp unsafe.Pointer) unsafe.Pointer {
	return unsafe.Add(bp, -wordSize)
}

// ftrp returns the address of bp's footer, computed from its header's size.
//
//go:inline
func ftrp(bp unsafe.Pointer) unsafe.Pointer {
	return unsafe.Add(bp, blockSize(bp)-dwordSize)
}

// blockSize returns the total size (header+payload+footer) of the block
// whose payload pointer is bp.
//
//go:inline
func blockSize(bp unsafe.Pointer) int {
	return sizeOf(getWord(hdrp(bp)))
}

// isAllocated reports whether the block at bp is currently allocated.
//
//go:inline
func isAllocated(bp unsafe.Pointer) bool {
	return allocOf(getWord(hdrp(bp)))
}

// setHeaderFooter writes matching header and footer words for bp, encoding
// size and alloc. Every block-size change must go through here so the
// header and footer never drift apart.
func setHeaderFooter(bp unsafe.Pointer, size int, alloc bool) {
	w := pack(size, alloc)
	putWord(hdrp(bp), w)
	putWord(unsafe.Add(bp, size-dwordSize), w)
}

// nextBlkp returns the payload pointer of the block physically following bp.
//
//go:inline
func nextBlkp(bp unsafe.Pointer) unsafe.Pointer {
	return unsafe.Add(bp, blockSize(bp))
}

// prevBlkp returns the payload pointer of the block physically preceding
// bp, found via bp's predecessor's footer (the boundary tag).
//
//go:inline
func prevBlkp(bp unsafe.Pointer) unsafe.Pointer {
	prevFooter := unsafe.Add(bp, -dwordSize)
	return unsafe.Add(bp, -sizeOf(getWord(prevFooter)))
}

// predSlot and succSlot address the two pointer-wide fields overlaid on a
// free block's payload. They are meaningless once the block is allocated;
// callers must never read them for an allocated block.
//
//go:inline
func predSlot(bp unsafe.Pointer) *unsafe.Pointer {
	return (*unsafe.Pointer)(bp)
}

//go:inline
func succSlot(bp unsafe.Pointer) *unsafe.Pointer {
	return (*unsafe.Pointer)(unsafe.Add(bp, dwordSize))
}

func getPred(bp unsafe.Pointer) unsafe.Pointer { return *predSlot(bp) }
func getSucc(bp unsafe.Pointer) unsafe.Pointer { return *succSlot(bp) }

func setPred(bp, v unsafe.Pointer) { *predSlot(bp) = v }
func setSucc(bp, v unsafe.Pointer) { *succSlot(bp) = v }
