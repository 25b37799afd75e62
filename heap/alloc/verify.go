package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/region"
)

// Verify checks the directory invariants and returns an error wrapping
// ErrCorrupt for the first violation found:
//
//   - prev/next links agree and the list has no cycle
//   - every size is a multiple of 8 and every payload is 8-byte aligned
//   - no two free blocks are adjacent
//   - heap blocks tile the heap from its start to the break without gaps
func (a *Allocator) Verify() error {
	seen := make(map[region.Block]struct{})
	prev := region.Nil
	heapCursor := a.heapBase

	for b := a.dir.head; !b.IsNil(); b = b.Next() {
		if _, dup := seen[b]; dup {
			return fmt.Errorf("%w: cycle at block %#x", ErrCorrupt, b.Addr())
		}
		seen[b] = struct{}{}

		if b.Prev() != prev {
			return fmt.Errorf("%w: block %#x has prev %#x, want %#x", ErrCorrupt, b.Addr(), b.Prev().Addr(), prev.Addr())
		}
		if !format.IsAligned8(b.Size()) {
			return fmt.Errorf("%w: block %#x size %d is not 8-byte aligned", ErrCorrupt, b.Addr(), b.Size())
		}
		if !format.IsAligned8(b.Payload()) {
			return fmt.Errorf("%w: payload %#x is not 8-byte aligned", ErrCorrupt, b.Payload())
		}

		switch b.Status() {
		case region.StatusFree, region.StatusAlloc:
			if b.Addr() != heapCursor {
				return fmt.Errorf("%w: heap block %#x, expected next heap block at %#x", ErrCorrupt, b.Addr(), heapCursor)
			}
			heapCursor = b.End()
		case region.StatusMapped:
		default:
			return fmt.Errorf("%w: block %#x has status %d", ErrCorrupt, b.Addr(), b.Status())
		}

		if !prev.IsNil() && prev.Is(region.StatusFree) && b.Is(region.StatusFree) {
			return fmt.Errorf("%w: adjacent free blocks %#x and %#x", ErrCorrupt, prev.Addr(), b.Addr())
		}
		prev = b
	}

	if heapCursor != a.brk {
		return fmt.Errorf("%w: heap blocks end at %#x, break is %#x", ErrCorrupt, heapCursor, a.brk)
	}
	return nil
}
