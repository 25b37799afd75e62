//go:build unix

package osmem

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/region"
)

func TestUnixProvider_CommittedMemoryIsWritable(t *testing.T) {
	p, err := New(1 << 20)
	require.NoError(t, err)
	defer func() { require.NoError(t, p.Release()) }()

	// Spans a page boundary so two commits are exercised.
	start, err := p.ExtendHeap(uintptr(p.PageSize()) + 512)
	require.NoError(t, err)
	mem := region.Bytes(start, uintptr(p.PageSize())+512)
	for i := range mem {
		mem[i] = 0xAB
	}
	require.Equal(t, byte(0xAB), mem[len(mem)-1])

	base, err := p.MapAnonymous(300000)
	require.NoError(t, err)
	m := region.Bytes(base, 300000)
	m[0], m[299999] = 1, 2
	require.Equal(t, byte(0), m[1], "fresh mappings are zeroed")
	require.NoError(t, p.Unmap(base, 300000))
}
