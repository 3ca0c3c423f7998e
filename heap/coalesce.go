package heap

import "unsafe"

// coalesce merges the newly-freed block bp with any physically adjacent
// free neighbors and inserts the resulting block at the free-list head. It
// returns the payload pointer of the (possibly merged) block.
//
// prevAlloc is forced true when PREV_BLKP's boundary-tag lookup aliases bp
// itself. That only happens when bp sits at the very start of the granted
// region with no real predecessor tag to its left; New lays out the
// prologue so this never occurs in practice, but the check is kept as a
// guard against reading a footer that was never written.
func (h *Heap) coalesce(bp unsafe.Pointer) unsafe.Pointer {
	prev := prevBlkp(bp)
	prevAlloc := prev == bp || isAllocated(prev)

	next := nextBlkp(bp)
	nextAlloc := isAllocated(next)

	size := blockSize(bp)

	switch {
	case prevAlloc && nextAlloc:
		h.freeListInsert(bp)
		return bp

	case prevAlloc && !nextAlloc:
		size += blockSize(next)
		h.freeListRemove(next)
		setHeaderFooter(bp, size, false)

	case !prevAlloc && nextAlloc:
		size += blockSize(prev)
		h.freeListRemove(prev)
		bp = prev
		setHeaderFooter(bp, size, false)

	default: // !prevAlloc && !nextAlloc
		size += blockSize(prev) + blockSize(next)
		h.freeListRemove(prev)
		h.freeListRemove(next)
		bp = prev
		setHeaderFooter(bp, size, false)
	}

	h.freeListInsert(bp)
	h.logger.Debug("coalesced block", "bp", bp, "size", size)
	return bp
}
