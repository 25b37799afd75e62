//go:build linux || darwin

package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

// TestCalloc_ZeroesReusedBlock verifies zeroing of a block that held data.
func TestCalloc_ZeroesReusedBlock(t *testing.T) {
	a := newTestAllocator(t)

	p := a.Malloc(64)
	a.Malloc(8)
	fill(p, 64, 0xFF)
	a.Free(p)

	q := a.Calloc(8, 8)
	require.Equal(t, p, q)
	requireFilled(t, q, 64, 0)
	assertInvariants(t, a)
}

// TestCalloc_ZeroesWholePayload verifies that slack kept by a no-split reuse
// is zeroed too.
func TestCalloc_ZeroesWholePayload(t *testing.T) {
	a := newTestAllocator(t)

	p := a.Malloc(64)
	a.Malloc(8)
	fill(p, 64, 0xEE)
	a.Free(p)

	q := a.Calloc(1, 40)
	require.Equal(t, p, q)
	require.Equal(t, uintptr(64), a.UsableSize(q))
	requireFilled(t, q, 64, 0)
}

// TestCalloc_MapsAnythingAboveAPage verifies that the mapping threshold drops
// to the page size for the duration of the call.
func TestCalloc_MapsAnythingAboveAPage(t *testing.T) {
	a := newTestAllocator(t)
	require.NotNil(t, a.Malloc(8))
	page := uintptr(a.PageSize())
	require.NotZero(t, page)

	p := a.Calloc(1, page)
	require.NotNil(t, p)
	assert.Equal(t, StatusMapped, blockAt(t, a, p).Status)
	requireFilled(t, p, page, 0)

	// the same size through Malloc stays on the heap
	q := a.Malloc(page)
	assert.Equal(t, StatusAlloc, blockAt(t, a, q).Status)

	assert.Equal(t, uintptr(format.DefaultThreshold), a.Threshold(), "threshold must be restored")
	assertInvariants(t, a)
}

// TestCalloc_SmallStaysOnHeap verifies that small zeroed requests use the
// heap, priming it when needed.
func TestCalloc_SmallStaysOnHeap(t *testing.T) {
	a := newTestAllocator(t)

	p := a.Calloc(4, 16)
	require.NotNil(t, p)
	assert.Equal(t, StatusAlloc, blockAt(t, a, p).Status)
	assert.Equal(t, uint64(1), a.Stats().HeapGrows)
	assert.Equal(t, uintptr(format.DefaultThreshold), a.Stats().HeapBytes)
	requireFilled(t, p, 64, 0)
	assertInvariants(t, a)
}
