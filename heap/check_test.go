package heap

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestCheck_CleanHeapHasNoViolations(t *testing.T) {
	h := newTestHeap(t)

	a := h.Alloc(40)
	b := h.Alloc(80)
	require.NotNil(t, a)
	require.NotNil(t, b)
	h.Free(a)

	require.Empty(t, h.Check(true))
}

func TestCheck_DetectsFooterCorruption(t *testing.T) {
	h := newTestHeap(t)

	a := h.Alloc(40)
	require.NotNil(t, a)

	// Corrupt the footer directly, bypassing setHeaderFooter's invariant.
	size := blockSize(a)
	*(*uint32)(unsafe.Add(a, size-dwordSize)) = pack(size+8, true)

	errs := h.Check(false)
	require.NotEmpty(t, errs)
	found := false
	for _, err := range errs {
		if errors.Is(err, ErrCorruptHeap) {
			found = true
		}
	}
	require.True(t, found)
}

func TestCheck_UninitializedHeapReportsSentinel(t *testing.T) {
	var h Heap
	errs := h.Check(false)
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], ErrHeapUninitialized)
}
