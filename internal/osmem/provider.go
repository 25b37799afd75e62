// Package osmem supplies the operating-system memory primitives consumed by
// the heap: a monotonically growing "break" over one contiguous reservation,
// and individually mapped anonymous regions for large blocks.
//
// The break is emulated without sbrk(2): a large range of address space is
// reserved up front and pages are committed only as the break moves over
// them. Blocks carved from the break are therefore physically adjacent, which
// the allocator relies on when it merges neighbours.
//
// Providers are not thread safe.
package osmem

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Provider is the arena provider interface consumed by the allocator.
type Provider interface {
	// ExtendHeap moves the break forward by delta bytes and returns the
	// previous break, which is where the new bytes begin. The heap never
	// shrinks.
	ExtendHeap(delta uintptr) (uintptr, error)

	// MapAnonymous returns a fresh private read/write region of size bytes.
	MapAnonymous(size uintptr) (uintptr, error)

	// Unmap releases a region returned by MapAnonymous. size must match.
	Unmap(base, size uintptr) error

	// PageSize is the system page size.
	PageSize() int

	// Release drops the heap reservation and any mappings still held.
	// The provider is unusable afterwards.
	Release() error
}

// reservedHeap is the break bookkeeping shared by every platform.
type reservedHeap struct {
	base      uintptr // first byte of the reservation
	brk       uintptr // current break
	committed uintptr // end of the committed prefix
	limit     uintptr // end of the reservation (exclusive)
	pageSize  int
}

func newReservedHeap(base, length uintptr, pageSize int) reservedHeap {
	return reservedHeap{
		base:      base,
		brk:       base,
		committed: base,
		limit:     base + length,
		pageSize:  pageSize,
	}
}

// extend advances the break, committing whole pages through commit when the
// break crosses the committed prefix.
func (h *reservedHeap) extend(delta uintptr, commit func(from, to uintptr) error) (uintptr, error) {
	if h.base == 0 {
		return 0, format.ErrReleased
	}
	end, err := buf.CheckRange(h.base, h.limit, h.brk, delta)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", format.ErrOutOfReservation, err)
	}
	if end > h.committed {
		to := min(format.AlignPage(end, h.pageSize), h.limit)
		if err := commit(h.committed, to); err != nil {
			return 0, fmt.Errorf("osmem: commit [%#x, %#x): %w", h.committed, to, err)
		}
		h.committed = to
	}
	prev := h.brk
	h.brk = end
	return prev, nil
}

// reservationLength rounds the requested reservation to whole pages.
func reservationLength(reservation uintptr, pageSize int) (uintptr, error) {
	if reservation == 0 {
		reservation = format.DefaultReservation
	}
	length := format.AlignPage(reservation, pageSize)
	if length < reservation {
		return 0, format.ErrOverflow
	}
	return length, nil
}
