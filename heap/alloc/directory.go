package alloc

import "github.com/joshuapare/heapkit/internal/region"

// directory is the registry of every live block, in request order. Heap
// blocks appear in address order among themselves; mapped blocks are
// interleaved wherever they were requested.
//
// All lookups walk the list. There is no auxiliary index.
type directory struct {
	head region.Block
}

func (d *directory) empty() bool { return d.head.IsNil() }

// tail returns the last block, or Nil for an empty directory.
func (d *directory) tail() region.Block {
	b := d.head
	if b.IsNil() {
		return region.Nil
	}
	for !b.Next().IsNil() {
		b = b.Next()
	}
	return b
}

// append links b after the current tail. b may already carry successors
// (the free remainder produced by priming); they come along unchanged.
func (d *directory) append(b region.Block) {
	if d.head.IsNil() {
		b.SetPrev(region.Nil)
		d.head = b
		return
	}
	t := d.tail()
	t.SetNext(b)
	b.SetPrev(t)
}

// insertAfter links n directly behind b.
func (d *directory) insertAfter(b, n region.Block) {
	next := b.Next()
	n.SetPrev(b)
	n.SetNext(next)
	if !next.IsNil() {
		next.SetPrev(n)
	}
	b.SetNext(n)
}

// remove unlinks b and repairs its neighbours.
func (d *directory) remove(b region.Block) {
	prev, next := b.Prev(), b.Next()
	if !prev.IsNil() {
		prev.SetNext(next)
	}
	if !next.IsNil() {
		next.SetPrev(prev)
	}
	if d.head == b {
		d.head = next
	}
	b.SetPrev(region.Nil)
	b.SetNext(region.Nil)
}

// findByPayload returns the block whose payload starts at ptr, or Nil.
func (d *directory) findByPayload(ptr uintptr) region.Block {
	for b := d.head; !b.IsNil(); b = b.Next() {
		if b.Payload() == ptr {
			return b
		}
	}
	return region.Nil
}

// lastHeapBlock returns the last block that is not MAPPED, or Nil.
func (d *directory) lastHeapBlock() region.Block {
	last := region.Nil
	for b := d.head; !b.IsNil(); b = b.Next() {
		if !b.Is(region.StatusMapped) {
			last = b
		}
	}
	return last
}

// each calls fn for every block in directory order until fn returns false.
func (d *directory) each(fn func(region.Block) bool) {
	for b := d.head; !b.IsNil(); b = b.Next() {
		if !fn(b) {
			return
		}
	}
}
