//go:build (linux || darwin) && !race

package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Headers live inside a Go byte slice here, which the race detector's
// pointer checks reject.
func TestOptions_GoProvider(t *testing.T) {
	a := New(&Options{
		NewProvider: func() (Provider, error) { return NewGoProvider(1 << 20) },
	})
	t.Cleanup(func() { _ = a.Reset() })

	p := a.Malloc(100)
	q := a.Malloc(200000)
	require.NotNil(t, p)
	require.NotNil(t, q)
	a.Free(q)
	a.Free(p)
	assertInvariants(t, a)
}
