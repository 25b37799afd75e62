//go:build linux || darwin

package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/region"
)

func TestVerify_EmptyAllocator(t *testing.T) {
	a := newTestAllocator(t)
	assert.NoError(t, a.Verify())
}

func TestVerify_DetectsAdjacentFreeBlocks(t *testing.T) {
	a := newTestAllocator(t)
	p := a.Malloc(64)
	a.Malloc(64)

	// mark p free without merging it into anything
	b := a.dir.findByPayload(region.Addr(p))
	b.SetStatus(region.StatusFree)
	require.NoError(t, a.Verify())

	b.Next().SetStatus(region.StatusFree)
	assert.ErrorIs(t, a.Verify(), ErrCorrupt)
}

func TestVerify_DetectsBrokenBackLink(t *testing.T) {
	a := newTestAllocator(t)
	a.Malloc(64)
	p := a.Malloc(64)

	b := a.dir.findByPayload(region.Addr(p))
	b.SetPrev(region.Nil)
	assert.ErrorIs(t, a.Verify(), ErrCorrupt)
}

func TestVerify_DetectsHeapGap(t *testing.T) {
	a := newTestAllocator(t)
	p := a.Malloc(64)

	b := a.dir.findByPayload(region.Addr(p))
	b.SetSize(b.Size() - 8)
	assert.ErrorIs(t, a.Verify(), ErrCorrupt)
}

func TestVerify_DetectsMisalignedSize(t *testing.T) {
	a := newTestAllocator(t)
	a.Malloc(64)

	tail := a.dir.tail()
	tail.SetSize(tail.Size() - 3)
	assert.ErrorIs(t, a.Verify(), ErrCorrupt)
}

func TestVerify_DetectsCycle(t *testing.T) {
	a := newTestAllocator(t)
	a.Malloc(64)

	tail := a.dir.tail()
	tail.SetNext(a.dir.head)
	err := a.Verify()
	tail.SetNext(region.Nil)
	assert.ErrorIs(t, err, ErrCorrupt)
}
