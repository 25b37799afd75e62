//go:build !unix && !windows

package osmem

// New returns a provider backed by Go memory on platforms without mmap or
// VirtualAlloc.
func New(reservation uintptr) (Provider, error) {
	return NewGoHeap(reservation)
}
