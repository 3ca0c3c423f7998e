//go:build unix

package pageprovider

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MmapProvider is the default OS-backed PageProvider. It reserves a large
// address-space window up front with a PROT_NONE anonymous mapping, then
// grows the usable prefix by re-protecting it to PROT_READ|PROT_WRITE as
// Sbrk is called — the standard sbrk-over-mmap emulation, chosen because
// Go has no native brk(2) binding and repeated MAP_FIXED remapping cannot
// guarantee the contiguity heap.PageProvider requires.
//
// Grounded on joshuapare-hivekit's internal/mmfile mmap-and-wrap-cleanup
// shape, upgraded from syscall.Mmap to golang.org/x/sys/unix so Mprotect
// is available uniformly across unix targets.
type MmapProvider struct {
	base      uintptr
	reserved  int
	committed uintptr // bytes already Sbrk'd (<= reserved)
}

// NewMmapProvider reserves reservedBytes of address space. reservedBytes
// bounds the total lifetime growth of any Heap built on this provider;
// pick something generous, since reserving address space (unlike
// committing it) is essentially free.
func NewMmapProvider(reservedBytes int) (*MmapProvider, error) {
	if reservedBytes <= 0 {
		return nil, fmt.Errorf("pageprovider: reservedBytes must be positive, got %d", reservedBytes)
	}

	region, err := unix.Mmap(-1, 0, reservedBytes, unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("pageprovider: reserving %d bytes: %w", reservedBytes, err)
	}

	return &MmapProvider{
		base:     uintptr(unsafe.Pointer(&region[0])),
		reserved: reservedBytes,
	}, nil
}

// Sbrk implements heap.PageProvider.
func (p *MmapProvider) Sbrk(n int) (unsafe.Pointer, error) {
	if n < 0 {
		return nil, fmt.Errorf("pageprovider: negative grant size %d", n)
	}
	newCommitted := p.committed + uintptr(n)
	if int(newCommitted) > p.reserved {
		return nil, fmt.Errorf("pageprovider: reserved region exhausted: reserved %d bytes, %d already committed, %d requested",
			p.reserved, p.committed, n)
	}

	if newCommitted > 0 {
		region := unsafe.Slice((*byte)(unsafe.Pointer(p.base)), int(newCommitted))
		if err := unix.Mprotect(region, unix.PROT_READ|unix.PROT_WRITE); err != nil {
			return nil, fmt.Errorf("pageprovider: committing %d bytes: %w", newCommitted, err)
		}
	}

	ptr := unsafe.Add(unsafe.Pointer(p.base), p.committed)
	p.committed = newCommitted
	return ptr, nil
}

// Hi implements heap.PageProvider.
func (p *MmapProvider) Hi() uintptr {
	return p.base + p.committed
}

// Dispose releases the reserved address-space window. The provider, and
// any Heap built on it, must not be used afterward.
func (p *MmapProvider) Dispose() error {
	region := unsafe.Slice((*byte)(unsafe.Pointer(p.base)), p.reserved)
	return unix.Munmap(region)
}
