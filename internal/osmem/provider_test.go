package osmem

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

const testReservation = 256 * 1024

func newProviders(t *testing.T) map[string]Provider {
	t.Helper()
	native, err := New(testReservation)
	require.NoError(t, err)
	goheap, err := NewGoHeap(testReservation)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, native.Release())
		require.NoError(t, goheap.Release())
	})
	// The Go-memory provider is available on all platforms. Rather than
	// requiring an exotic GOOS to cover it, test it next to the native one.
	return map[string]Provider{"native": native, "goheap": goheap}
}

func TestProviders_ExtendHeapIsContiguous(t *testing.T) {
	for name, p := range newProviders(t) {
		t.Run(name, func(t *testing.T) {
			first, err := p.ExtendHeap(128)
			require.NoError(t, err)
			require.NotZero(t, first)
			require.True(t, format.IsAligned8(first))

			second, err := p.ExtendHeap(40)
			require.NoError(t, err)
			require.Equal(t, first+128, second)

			brk, err := p.ExtendHeap(0)
			require.NoError(t, err)
			require.Equal(t, second+40, brk)
		})
	}
}

func TestProviders_ExtendHeapExhaustsReservation(t *testing.T) {
	for name, p := range newProviders(t) {
		t.Run(name, func(t *testing.T) {
			_, err := p.ExtendHeap(testReservation)
			require.NoError(t, err)

			_, err = p.ExtendHeap(8)
			require.ErrorIs(t, err, format.ErrOutOfReservation)
		})
	}
}

func TestProviders_MapUnmap(t *testing.T) {
	for name, p := range newProviders(t) {
		t.Run(name, func(t *testing.T) {
			base, err := p.MapAnonymous(200000)
			require.NoError(t, err)
			require.True(t, format.IsAligned8(base))

			require.ErrorIs(t, p.Unmap(base, 12), format.ErrBadRegion)
			require.NoError(t, p.Unmap(base, 200000))
			require.ErrorIs(t, p.Unmap(base, 200000), format.ErrBadRegion)

			_, err = p.MapAnonymous(0)
			require.Error(t, err)
		})
	}
}

func TestProviders_Release(t *testing.T) {
	for name, p := range newProviders(t) {
		t.Run(name, func(t *testing.T) {
			_, err := p.ExtendHeap(64)
			require.NoError(t, err)
			_, err = p.MapAnonymous(4096)
			require.NoError(t, err)

			require.NoError(t, p.Release())
			require.NoError(t, p.Release(), "second release is a no-op")

			_, err = p.ExtendHeap(64)
			require.ErrorIs(t, err, format.ErrReleased)
			_, err = p.MapAnonymous(4096)
			require.ErrorIs(t, err, format.ErrReleased)
		})
	}
}

func TestProviders_PageSize(t *testing.T) {
	for name, p := range newProviders(t) {
		t.Run(name, func(t *testing.T) {
			ps := p.PageSize()
			require.Positive(t, ps)
			require.Zero(t, ps&(ps-1), "page size must be a power of two")
		})
	}
}

func TestReservedHeap_CommitsWholePages(t *testing.T) {
	const base, pageSize = 0x10000, 4096
	h := newReservedHeap(base, 4*pageSize, pageSize)

	type span struct{ from, to uintptr }
	var commits []span
	commit := func(from, to uintptr) error {
		commits = append(commits, span{from, to})
		return nil
	}

	prev, err := h.extend(100, commit)
	require.NoError(t, err)
	require.Equal(t, uintptr(base), prev)
	require.Equal(t, []span{{base, base + pageSize}}, commits)

	// Still inside the first committed page.
	_, err = h.extend(3000, commit)
	require.NoError(t, err)
	require.Len(t, commits, 1)

	// Crosses into the third page.
	_, err = h.extend(pageSize+1000, commit)
	require.NoError(t, err)
	require.Equal(t, span{base + pageSize, base + 3*pageSize}, commits[1])

	// Never commits past the reservation.
	_, err = h.extend(4*pageSize-(h.brk-base), commit)
	require.NoError(t, err)
	require.Equal(t, uintptr(base+4*pageSize), commits[len(commits)-1].to)

	_, err = h.extend(1, commit)
	require.ErrorIs(t, err, format.ErrOutOfReservation)
}

func TestReservedHeap_CommitFailureLeavesBreak(t *testing.T) {
	h := newReservedHeap(0x10000, 8192, 4096)
	_, err := h.extend(10, func(uintptr, uintptr) error { return format.ErrOverflow })
	require.ErrorIs(t, err, format.ErrOverflow)
	require.Equal(t, uintptr(0x10000), h.brk)
	require.Equal(t, uintptr(0x10000), h.committed)
}

func TestReservationLength(t *testing.T) {
	n, err := reservationLength(0, 4096)
	require.NoError(t, err)
	require.Equal(t, uintptr(format.DefaultReservation), n)

	n, err = reservationLength(5000, 4096)
	require.NoError(t, err)
	require.Equal(t, uintptr(8192), n)
}
