// Package pageprovider supplies concrete implementations of
// heap.PageProvider: the sbrk-like collaborator the allocator engine grows
// against. The engine itself never imports this package; callers wire one
// of these into heap.New.
package pageprovider

import (
	"fmt"
	"unsafe"
)

// SliceProvider backs a heap region with a single fixed-capacity Go byte
// slice, growing the reported high watermark within that backing array as
// Sbrk is called. It needs no OS privileges and is the default provider
// for cmd/deltatrace and the heap package's own test suite.
//
// Grounded on the "treat a Go slice's backing array as a raw arena" idiom:
// a fixed buffer is allocated once and addresses inside it are handed out
// via unsafe.Pointer arithmetic, the same technique the reference TLSF
// port uses via arena.MakeSlice and the reference first-fit port uses via
// unsafe.SliceData over a plain []byte.
type SliceProvider struct {
	buf []byte
	hi  uintptr // offset into buf already granted
}

// NewSliceProvider allocates a backing buffer of the given capacity. Sbrk
// calls fail once the buffer is exhausted; the buffer itself never grows.
func NewSliceProvider(capacity int) *SliceProvider {
	return &SliceProvider{buf: make([]byte, capacity)}
}

// Sbrk implements heap.PageProvider.
func (p *SliceProvider) Sbrk(n int) (unsafe.Pointer, error) {
	if n < 0 {
		return nil, fmt.Errorf("pageprovider: negative grant size %d", n)
	}
	if len(p.buf) == 0 || p.hi+uintptr(n) > uintptr(len(p.buf)) {
		return nil, fmt.Errorf("pageprovider: backing buffer exhausted: have %d bytes, %d already granted, %d requested",
			len(p.buf), p.hi, n)
	}
	ptr := unsafe.Add(unsafe.Pointer(&p.buf[0]), p.hi)
	p.hi += uintptr(n)
	return ptr, nil
}

// Hi implements heap.PageProvider.
func (p *SliceProvider) Hi() uintptr {
	if len(p.buf) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&p.buf[0])) + p.hi
}

// Cap returns the total backing capacity in bytes.
func (p *SliceProvider) Cap() int { return len(p.buf) }

// Granted returns the number of bytes already handed out via Sbrk.
func (p *SliceProvider) Granted() int { return int(p.hi) }
