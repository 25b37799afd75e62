package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/region"
)

// Arena provider adapter: everything that asks the OS for memory goes
// through the functions in this file, and every failure there is fatal.

// ensureProvider creates the provider on first use.
func (a *Allocator) ensureProvider() {
	if a.provider != nil {
		return
	}
	p, err := a.opts.NewProvider()
	if err != nil {
		a.fatal("cannot create memory provider", err)
	}
	a.provider = p
	a.pageSize = p.PageSize()
}

// request serves a brand new block of size payload bytes. Blocks whose
// footprint exceeds the threshold get their own mapping; everything else is
// carved from the heap break. The returned block is not in the directory.
func (a *Allocator) request(size uintptr) region.Block {
	a.ensureProvider()
	if region.HeaderSize+size > a.threshold {
		return a.mapBlock(size)
	}
	if !a.primed {
		return a.prime(size)
	}
	b := region.At(a.growHeap(region.HeaderSize + size))
	b.Init(size, region.StatusAlloc)
	return b
}

// prime performs the one-time oversized first growth of the heap. A full
// threshold worth of memory is taken from the OS regardless of size; the
// request is carved off the front and the rest trails it as a free block, so
// the next few small requests need no OS call at all.
//
// The free remainder is linked behind the returned block.
func (a *Allocator) prime(size uintptr) region.Block {
	amount := max(a.opts.Threshold, region.HeaderSize+size)
	b := region.At(a.growHeap(amount))
	a.primed = true
	b.Init(amount-region.HeaderSize, region.StatusAlloc)
	a.split(b, size)
	a.log.Debug("heap primed", "amount", amount, "request", size, "remainder", amount-region.HeaderSize-b.Size())
	return b
}

// growHeap moves the break forward by delta bytes and returns where the new
// bytes begin.
func (a *Allocator) growHeap(delta uintptr) uintptr {
	prev, err := a.provider.ExtendHeap(delta)
	if err != nil {
		a.fatal(fmt.Sprintf("heap growth of %d bytes failed", delta), err)
	}
	if a.heapBase == 0 {
		a.heapBase = prev
	}
	a.brk = prev + delta
	a.stats.HeapGrows++
	a.stats.HeapBytes += delta
	a.log.Debug("heap grown", "delta", delta, "break", fmt.Sprintf("%#x", a.brk))
	return prev
}

// mapBlock creates a MAPPED block sized exactly header+size.
func (a *Allocator) mapBlock(size uintptr) region.Block {
	footprint := region.HeaderSize + size
	base, err := a.provider.MapAnonymous(footprint)
	if err != nil {
		a.fatal(fmt.Sprintf("mapping of %d bytes failed", footprint), err)
	}
	b := region.At(base)
	b.Init(size, region.StatusMapped)
	a.stats.Maps++
	a.stats.MappedRegions++
	a.stats.MappedBytes += footprint
	a.log.Debug("region mapped", "size", size, "base", fmt.Sprintf("%#x", base))
	return b
}

// unmapBlock unlinks a MAPPED block and returns its region to the OS.
func (a *Allocator) unmapBlock(b region.Block) {
	footprint := b.Footprint()
	a.dir.remove(b)
	if err := a.provider.Unmap(b.Addr(), footprint); err != nil {
		a.fatal(fmt.Sprintf("unmapping of %d bytes at %#x failed", footprint, b.Addr()), err)
	}
	a.stats.Unmaps++
	a.stats.MappedRegions--
	a.stats.MappedBytes -= footprint
	a.log.Debug("region unmapped", "size", footprint-region.HeaderSize)
}

// expandTail grows the last block of the directory to size by moving the
// break, when that block is free. It returns Nil when the tail is not free.
func (a *Allocator) expandTail(size uintptr) region.Block {
	t := a.dir.tail()
	if t.IsNil() || !t.Is(region.StatusFree) {
		return region.Nil
	}
	if size <= t.Size() {
		a.fatal(fmt.Sprintf("expanding free tail of %d bytes to %d", t.Size(), size), ErrCorrupt)
	}
	a.growInPlace(t, size)
	t.SetStatus(region.StatusAlloc)
	return t
}

// growInPlace extends b, which must be the heap block ending at the break,
// to size payload bytes.
func (a *Allocator) growInPlace(b region.Block, size uintptr) {
	if b.End() != a.brk {
		a.fatal(fmt.Sprintf("block %#x ends at %#x, break is %#x", b.Addr(), b.End(), a.brk), ErrCorrupt)
	}
	a.growHeap(size - b.Size())
	b.SetSize(size)
}

// roundUp aligns a caller-supplied size, treating sizes that cannot be
// represented as exhaustion.
func (a *Allocator) roundUp(size uintptr) uintptr {
	aligned := format.Align8(size)
	if aligned < size || aligned > maxRequest {
		a.fatal(fmt.Sprintf("request of %d bytes cannot be satisfied", size), nil)
	}
	return aligned
}

// maxRequest keeps header+size arithmetic from wrapping.
const maxRequest = ^uintptr(0) >> 1
