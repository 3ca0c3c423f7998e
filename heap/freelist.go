package heap

import "unsafe"

// freeListInsert threads bp onto the head of the free list (LIFO
// discipline). h.freeHead is always non-nil after Heap.New succeeds: the
// prologue's payload seeds it and is never removed.
func (h *Heap) freeListInsert(bp unsafe.Pointer) {
	setSucc(bp, h.freeHead)
	setPred(h.freeHead, bp)
	setPred(bp, nil)
	h.freeHead = bp
}

// freeListRemove splices bp out of the free list. It relies on the
// prologue acting as a permanent non-nil terminal successor, so that the
// unconditional setPred(getSucc(bp), ...) below always targets a valid
// block, even when bp is currently the last live entry before the
// prologue.
func (h *Heap) freeListRemove(bp unsafe.Pointer) {
	if pred := getPred(bp); pred != nil {
		setSucc(pred, getSucc(bp))
	} else {
		h.freeHead = getSucc(bp)
	}
	setPred(getSucc(bp), getPred(bp))
}
