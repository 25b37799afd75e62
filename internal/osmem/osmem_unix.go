//go:build unix

package osmem

import (
	"fmt"
	"math"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/heapkit/internal/format"
)

// unixProvider reserves the heap with a PROT_NONE mapping and commits pages
// with mprotect as the break grows. Large blocks get their own mmap.
type unixProvider struct {
	heap     reservedHeap
	reserved []byte
	mappings map[uintptr][]byte // base -> slice returned by unix.Mmap
}

// New reserves reservation bytes of address space (0 selects
// format.DefaultReservation) and returns the platform provider.
func New(reservation uintptr) (Provider, error) {
	pageSize := unix.Getpagesize()
	length, err := reservationLength(reservation, pageSize)
	if err != nil {
		return nil, err
	}
	if length > math.MaxInt {
		return nil, fmt.Errorf("osmem: reservation of %d bytes: %w", length, format.ErrOverflow)
	}

	// A protected, private, anonymous mapping does not commit memory.
	mem, err := unix.Mmap(-1, 0, int(length), unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("osmem: failed to reserve heap: %w", err)
	}
	base := uintptr(unsafe.Pointer(&mem[0]))
	return &unixProvider{
		heap:     newReservedHeap(base, length, pageSize),
		reserved: mem,
		mappings: make(map[uintptr][]byte),
	}, nil
}

func (p *unixProvider) ExtendHeap(delta uintptr) (uintptr, error) {
	return p.heap.extend(delta, func(from, to uintptr) error {
		off := from - p.heap.base
		return unix.Mprotect(p.reserved[off:to-p.heap.base], unix.PROT_READ|unix.PROT_WRITE)
	})
}

func (p *unixProvider) MapAnonymous(size uintptr) (uintptr, error) {
	if p.reserved == nil {
		return 0, format.ErrReleased
	}
	if size == 0 || size > math.MaxInt {
		return 0, fmt.Errorf("osmem: map %d bytes: %w", size, format.ErrOverflow)
	}
	mem, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return 0, fmt.Errorf("osmem: failed to map %d bytes: %w", size, err)
	}
	base := uintptr(unsafe.Pointer(&mem[0]))
	p.mappings[base] = mem
	return base, nil
}

func (p *unixProvider) Unmap(base, size uintptr) error {
	mem, ok := p.mappings[base]
	if !ok || uintptr(len(mem)) != size {
		return fmt.Errorf("osmem: unmap %#x (%d bytes): %w", base, size, format.ErrBadRegion)
	}
	if err := unix.Munmap(mem); err != nil {
		return fmt.Errorf("osmem: failed to unmap %#x: %w", base, err)
	}
	delete(p.mappings, base)
	return nil
}

func (p *unixProvider) PageSize() int { return p.heap.pageSize }

func (p *unixProvider) Release() error {
	if p.reserved == nil {
		return nil
	}
	var firstErr error
	for base, mem := range p.mappings {
		if err := unix.Munmap(mem); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("osmem: failed to unmap %#x: %w", base, err)
		}
		delete(p.mappings, base)
	}
	if err := unix.Munmap(p.reserved); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("osmem: failed to release heap: %w", err)
	}
	p.reserved = nil
	p.heap = reservedHeap{}
	return firstErr
}
