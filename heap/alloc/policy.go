package alloc

import "github.com/joshuapare/heapkit/internal/region"

// findBestFit returns the smallest free block of at least size bytes. Among
// equally small candidates the first one in directory order wins.
func (a *Allocator) findBestFit(size uintptr) region.Block {
	best := region.Nil
	a.dir.each(func(b region.Block) bool {
		if b.Is(region.StatusFree) && b.Size() >= size && (best.IsNil() || b.Size() < best.Size()) {
			best = b
		}
		return true
	})
	return best
}

// split shrinks b to size and turns the tail into a new free block, provided
// the tail can hold a header and at least one payload byte. Otherwise the
// whole block is kept. b is always left ALLOCATED. The new free block, if
// any, is returned.
func (a *Allocator) split(b region.Block, size uintptr) region.Block {
	rest := region.Nil
	if b.Size() > region.HeaderSize+size {
		rest = b.Carve(size)
		rest.Init(b.Size()-region.HeaderSize-size, region.StatusFree)
		a.dir.insertAfter(b, rest)
		b.SetSize(size)
		a.stats.Splits++
	}
	b.SetStatus(region.StatusAlloc)
	return rest
}

// coalesce merges b with its successor when both are free. Only forward:
// merging with the predecessor is done by calling coalesce on it.
func (a *Allocator) coalesce(b region.Block) {
	if b.IsNil() {
		return
	}
	next := b.Next()
	if next.IsNil() || !b.Is(region.StatusFree) || !next.Is(region.StatusFree) {
		return
	}
	b.SetSize(b.Size() + region.HeaderSize + next.Size())
	a.dir.remove(next)
	a.stats.Coalesces++
}
