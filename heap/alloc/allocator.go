package alloc

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/joshuapare/heapkit/internal/region"
)

// Allocator is a best-fit heap with embedded block headers. The zero value
// is not usable; create one with New.
type Allocator struct {
	opts     Options
	log      *slog.Logger
	provider Provider
	pageSize int

	dir       directory
	primed    bool    // first heap growth has happened
	threshold uintptr // mapping threshold, lowered temporarily by Calloc
	heapBase  uintptr // start of the heap, 0 until the first growth
	brk       uintptr // current heap break

	stats Stats
}

// New creates an allocator. Nothing is requested from the OS until the first
// allocation. A nil opts selects DefaultOptions.
func New(opts *Options) *Allocator {
	o := opts.withDefaults()
	return &Allocator{
		opts:      o,
		log:       o.Logger,
		threshold: o.Threshold,
	}
}

// Malloc returns a payload of at least size bytes, or nil when size is 0.
// The payload is 8-byte aligned and its contents are unspecified.
func (a *Allocator) Malloc(size uintptr) unsafe.Pointer {
	if size == 0 {
		return nil
	}
	a.stats.Mallocs++
	return a.allocate(a.roundUp(size)).Pointer()
}

// allocate serves an already aligned size.
func (a *Allocator) allocate(size uintptr) region.Block {
	if a.dir.empty() {
		b := a.request(size)
		a.dir.append(b)
		return b
	}

	if region.HeaderSize+size > a.threshold {
		b := a.request(size)
		a.dir.append(b)
		return b
	}

	if b := a.findBestFit(size); !b.IsNil() {
		a.split(b, size)
		return b
	}

	if b := a.expandTail(size); !b.IsNil() {
		return b
	}

	b := a.request(size)
	a.dir.append(b)
	return b
}

// Free releases a payload returned by this allocator. nil, pointers the
// allocator does not know and payloads that are already free are ignored.
func (a *Allocator) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	b := a.dir.findByPayload(region.Addr(ptr))
	if b.IsNil() {
		return
	}
	a.stats.Frees++
	a.release(b)
}

// release returns b to the heap (or to the OS when it is mapped), merging it
// with free neighbours on both sides.
func (a *Allocator) release(b region.Block) {
	switch b.Status() {
	case region.StatusMapped:
		// Unlinking the mapping can bring two free heap blocks together.
		prev := b.Prev()
		a.unmapBlock(b)
		a.coalesce(prev)
	case region.StatusAlloc:
		b.SetStatus(region.StatusFree)
		a.coalesce(b)
		a.coalesce(b.Prev())
	}
}

// Calloc returns a zeroed payload for count elements of size bytes, or nil
// when either is 0.
//
// The product count*size is not checked for overflow; callers passing
// untrusted counts must check it themselves.
//
// While serving the request the mapping threshold is lowered to the page
// size, so anything larger than a page gets a fresh mapping.
func (a *Allocator) Calloc(count, size uintptr) unsafe.Pointer {
	if count == 0 || size == 0 {
		return nil
	}
	a.stats.Callocs++
	a.ensureProvider()

	saved := a.threshold
	a.threshold = uintptr(a.pageSize)
	b := a.allocate(a.roundUp(count * size))
	a.threshold = saved

	region.Zero(b.Payload(), b.Size())
	return b.Pointer()
}

// Realloc resizes the payload at ptr to size bytes and returns the payload
// to use from now on. The first min(old, size) bytes are preserved.
//
//   - nil ptr behaves like Malloc(size)
//   - size 0 frees ptr and returns nil
//   - unknown pointers and already-freed payloads return nil and change nothing
func (a *Allocator) Realloc(ptr unsafe.Pointer, size uintptr) unsafe.Pointer {
	if ptr == nil {
		return a.Malloc(size)
	}
	if size == 0 {
		a.Free(ptr)
		return nil
	}

	b := a.dir.findByPayload(region.Addr(ptr))
	if b.IsNil() || b.Is(region.StatusFree) {
		return nil
	}
	a.stats.Reallocs++
	size = a.roundUp(size)

	if b.Is(region.StatusMapped) {
		return a.relocate(b, size).Pointer()
	}

	switch old := b.Size(); {
	case size == old:
		return ptr
	case size < old:
		if rest := a.split(b, size); !rest.IsNil() {
			a.coalesce(rest)
		}
		return ptr
	}

	if a.absorbNext(b, size) {
		return ptr
	}

	if b == a.dir.tail() {
		a.growInPlace(b, size)
		a.stats.InPlaceGrows++
		return ptr
	}

	if nb := a.moveToFreeEnd(b, size); !nb.IsNil() {
		return nb.Pointer()
	}

	return a.relocate(b, size).Pointer()
}

// absorbNext grows b into its free successor when the successor (header
// included) covers the missing bytes. Whatever is left beyond size becomes a
// free block again if it can hold a header.
func (a *Allocator) absorbNext(b region.Block, size uintptr) bool {
	next := b.Next()
	if next.IsNil() || !next.Is(region.StatusFree) {
		return false
	}
	if next.Size()+region.HeaderSize < size-b.Size() {
		return false
	}
	b.SetSize(b.Size() + region.HeaderSize + next.Size())
	a.dir.remove(next)
	a.split(b, size)
	a.stats.InPlaceGrows++
	return true
}

// moveToFreeEnd handles a growing block that is neither last nor followed by
// enough free space. When no free block could take the request anyway and
// the last heap block is free, that block is stretched to size at the break
// and the payload moves there. Returns Nil when the heuristic does not apply,
// including when the last heap block is allocated.
func (a *Allocator) moveToFreeEnd(b region.Block, size uintptr) region.Block {
	if region.HeaderSize+size > a.threshold || !a.findBestFit(size).IsNil() {
		return region.Nil
	}
	last := a.dir.lastHeapBlock()
	if last.IsNil() || !last.Is(region.StatusFree) {
		return region.Nil
	}

	a.growInPlace(last, size)
	last.SetStatus(region.StatusAlloc)
	region.Move(last.Payload(), b.Payload(), b.Size())
	a.release(b)
	a.stats.Relocations++
	a.log.Debug("payload moved to heap end", "from", fmt.Sprintf("%#x", b.Payload()), "size", size)
	return last
}

// relocate copies b into a fresh block of size bytes and releases b.
func (a *Allocator) relocate(b region.Block, size uintptr) region.Block {
	nb := a.allocate(size)
	region.Move(nb.Payload(), b.Payload(), min(b.Size(), size))
	a.release(b)
	a.stats.Relocations++
	a.log.Debug("payload relocated", "from", fmt.Sprintf("%#x", b.Payload()), "to", fmt.Sprintf("%#x", nb.Payload()), "size", size)
	return nb
}

// Reset returns every byte to the OS and puts the allocator back in its
// initial state. Payloads handed out earlier become invalid.
func (a *Allocator) Reset() error {
	var err error
	if a.provider != nil {
		if rerr := a.provider.Release(); rerr != nil {
			err = fmt.Errorf("alloc: reset: %w", rerr)
		}
	}
	*a = Allocator{
		opts:      a.opts,
		log:       a.log,
		threshold: a.opts.Threshold,
	}
	return err
}
