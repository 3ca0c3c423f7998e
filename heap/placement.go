package heap

import "unsafe"

// findFit walks the free list from its head via successor links, returning
// the first block whose size is at least asize. The prologue is
// permanently allocated and terminates the free list, so the loop always
// terminates: reaching a block with the allocated bit set (the prologue)
// means "no fit", not an error.
func (h *Heap) findFit(asize int) unsafe.Pointer {
	for bp := h.freeHead; !isAllocated(bp); bp = getSucc(bp) {
		if blockSize(bp) >= asize {
			return bp
		}
	}
	return nil
}

// place claims a free block bp of at least asize bytes, splitting off the
// remainder when it is large enough to form its own minimum-sized block.
// Splitting is mandatory whenever the surplus admits it, per the
// placement-policy contract: leaving an oversized allocated block instead
// would waste space no future request could recover without a later
// realloc.
func (h *Heap) place(bp unsafe.Pointer, asize int) {
	csize := blockSize(bp)

	if csize-asize >= MINIMUM {
		setHeaderFooter(bp, asize, true)
		h.freeListRemove(bp)

		rem := nextBlkp(bp)
		setHeaderFooter(rem, csize-asize, false)
		h.coalesce(rem)
	} else {
		setHeaderFooter(bp, csize, true)
		h.freeListRemove(bp)
	}
}
