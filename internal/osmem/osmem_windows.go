//go:build windows

package osmem

import (
	"fmt"

	"golang.org/x/sys/windows"

	"github.com/joshuapare/heapkit/internal/format"
)

// windowsProvider reserves the heap with MEM_RESERVE and commits pages with
// MEM_COMMIT as the break grows. Large blocks get their own VirtualAlloc.
type windowsProvider struct {
	heap     reservedHeap
	mappings map[uintptr]uintptr // base -> size
}

// New reserves reservation bytes of address space (0 selects
// format.DefaultReservation) and returns the platform provider.
func New(reservation uintptr) (Provider, error) {
	pageSize := windows.Getpagesize()
	length, err := reservationLength(reservation, pageSize)
	if err != nil {
		return nil, err
	}

	// Reserve address space only; nothing is committed yet.
	base, err := windows.VirtualAlloc(0, length, windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, fmt.Errorf("osmem: failed to reserve heap: %w", err)
	}
	return &windowsProvider{
		heap:     newReservedHeap(base, length, pageSize),
		mappings: make(map[uintptr]uintptr),
	}, nil
}

func (p *windowsProvider) ExtendHeap(delta uintptr) (uintptr, error) {
	return p.heap.extend(delta, func(from, to uintptr) error {
		_, err := windows.VirtualAlloc(from, to-from, windows.MEM_COMMIT, windows.PAGE_READWRITE)
		return err
	})
}

func (p *windowsProvider) MapAnonymous(size uintptr) (uintptr, error) {
	if p.heap.base == 0 {
		return 0, format.ErrReleased
	}
	base, err := windows.VirtualAlloc(0, size, windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return 0, fmt.Errorf("osmem: failed to map %d bytes: %w", size, err)
	}
	p.mappings[base] = size
	return base, nil
}

func (p *windowsProvider) Unmap(base, size uintptr) error {
	if got, ok := p.mappings[base]; !ok || got != size {
		return fmt.Errorf("osmem: unmap %#x (%d bytes): %w", base, size, format.ErrBadRegion)
	}
	if err := windows.VirtualFree(base, 0, windows.MEM_RELEASE); err != nil {
		return fmt.Errorf("osmem: failed to unmap %#x: %w", base, err)
	}
	delete(p.mappings, base)
	return nil
}

func (p *windowsProvider) PageSize() int { return p.heap.pageSize }

func (p *windowsProvider) Release() error {
	if p.heap.base == 0 {
		return nil
	}
	var firstErr error
	for base := range p.mappings {
		if err := windows.VirtualFree(base, 0, windows.MEM_RELEASE); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("osmem: failed to unmap %#x: %w", base, err)
		}
		delete(p.mappings, base)
	}
	if err := windows.VirtualFree(p.heap.base, 0, windows.MEM_RELEASE); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("osmem: failed to release heap: %w", err)
	}
	p.heap = reservedHeap{}
	return firstErr
}
