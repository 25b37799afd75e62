package osmem

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/heapkit/internal/format"
)

// goHeap backs the break and the mappings with Go byte slices. Memory is
// committed eagerly by the Go runtime, so commits are no-ops. The provider
// holds every slice so the collector never reclaims memory that block
// headers still point into.
type goHeap struct {
	heap     reservedHeap
	backing  []byte
	mappings map[uintptr][]byte
}

// NewGoHeap returns a provider whose heap is a single Go allocation of
// reservation bytes (0 selects format.DefaultReservation). It works on every
// platform and is mostly useful where no OS mapping primitives exist.
func NewGoHeap(reservation uintptr) (Provider, error) {
	length, err := reservationLength(reservation, format.DefaultPageSize)
	if err != nil {
		return nil, err
	}
	backing := make([]byte, length+format.Alignment)
	base := uintptr(unsafe.Pointer(&backing[0]))
	base = format.Align8(base)
	return &goHeap{
		heap:     newReservedHeap(base, length, format.DefaultPageSize),
		backing:  backing,
		mappings: make(map[uintptr][]byte),
	}, nil
}

func (p *goHeap) ExtendHeap(delta uintptr) (uintptr, error) {
	return p.heap.extend(delta, func(uintptr, uintptr) error { return nil })
}

func (p *goHeap) MapAnonymous(size uintptr) (uintptr, error) {
	if p.backing == nil {
		return 0, format.ErrReleased
	}
	if size == 0 {
		return 0, fmt.Errorf("osmem: map %d bytes: %w", size, format.ErrOverflow)
	}
	// make() returns at least word-aligned memory for blocks this large.
	mem := make([]byte, size)
	base := uintptr(unsafe.Pointer(&mem[0]))
	p.mappings[base] = mem
	return base, nil
}

func (p *goHeap) Unmap(base, size uintptr) error {
	mem, ok := p.mappings[base]
	if !ok || uintptr(len(mem)) != size {
		return fmt.Errorf("osmem: unmap %#x (%d bytes): %w", base, size, format.ErrBadRegion)
	}
	delete(p.mappings, base)
	return nil
}

func (p *goHeap) PageSize() int { return p.heap.pageSize }

func (p *goHeap) Release() error {
	p.backing = nil
	clear(p.mappings)
	p.heap = reservedHeap{}
	return nil
}
