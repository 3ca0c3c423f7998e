//go:build !unix

package pageprovider

import "fmt"

// MmapProvider is unavailable on non-unix targets; NewMmapProvider always
// fails there. Callers on those platforms should use SliceProvider
// instead, mirroring how joshuapare-hivekit's mmfile package falls back to
// a non-mmap implementation rather than failing to build.
type MmapProvider struct{}

// NewMmapProvider always returns an error on this platform.
func NewMmapProvider(reservedBytes int) (*MmapProvider, error) {
	return nil, fmt.Errorf("pageprovider: MmapProvider is not supported on this platform, use SliceProvider")
}
