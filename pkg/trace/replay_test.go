//go:build linux || darwin

package trace

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/alloc"
)

func newAllocator(t *testing.T) *alloc.Allocator {
	t.Helper()
	a := alloc.New(&alloc.Options{Reservation: 64 << 20})
	t.Cleanup(func() { _ = a.Reset() })
	return a
}

func mustParse(t *testing.T, src string) []Op {
	t.Helper()
	ops, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	return ops
}

func TestReplay(t *testing.T) {
	a := newAllocator(t)
	ops := mustParse(t, `
malloc a 10
fill a 0x11
malloc big 200000
calloc z 8 8
expect z 0 64
realloc a 4000
expect a 0x11 10
free big
verify
`)
	var steps int
	res, err := Replay(context.Background(), a, ops, &Options{
		VerifyEach: true,
		OnStep:     func(int, Op) { steps++ },
	})
	require.NoError(t, err)

	assert.Equal(t, len(ops), res.Ops)
	assert.Equal(t, len(ops), steps)
	assert.Equal(t, 2, res.Live)
	assert.Equal(t, 3, res.PeakLive)
	assert.Equal(t, uint64(1), res.Stats.Unmaps)
	assert.Equal(t, 2, res.Usage.AllocatedBlocks)
}

func TestReplay_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  error
	}{
		{"free unknown", "free x", ErrUnknownID},
		{"fill unknown", "fill x 1", ErrUnknownID},
		{"expect unknown", "expect x 1 1", ErrUnknownID},
		{"double malloc", "malloc x 8\nmalloc x 8", ErrIDInUse},
		{"calloc over live", "malloc x 8\ncalloc x 1 1", ErrIDInUse},
		{"double free", "malloc x 8\nfree x\nfree x", ErrUnknownID},
		{"wrong content", "malloc x 8\nfill x 1\nexpect x 2 8", ErrMismatch},
		{"expect past end", "malloc x 8\nexpect x 0 9", ErrMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAllocator(t)
			_, err := Replay(context.Background(), a, mustParse(t, tt.src), nil)
			require.ErrorIs(t, err, tt.err)
			assert.Contains(t, err.Error(), "line ")
		})
	}
}

func TestReplay_ReallocEdgeCases(t *testing.T) {
	a := newAllocator(t)
	res, err := Replay(context.Background(), a, mustParse(t, `
realloc fresh 32
fill fresh 7
expect fresh 7 32
realloc fresh 0
malloc empty 0
fill empty 9
free empty
`), nil)
	require.NoError(t, err)
	assert.Zero(t, res.Live)
	assert.Equal(t, uint64(1), res.Stats.Frees, "realloc to 0 frees; free of a nil payload does not count")
}

func TestReplay_CanceledContext(t *testing.T) {
	a := newAllocator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Replay(ctx, a, mustParse(t, "malloc a 8"), nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Ops)
	assert.Empty(t, a.Blocks())
}

func TestReplay_GeneratedWorkload(t *testing.T) {
	a := newAllocator(t)
	ops := Generate(GenerateOptions{Ops: 3000, Seed: 1, MaxSize: 300000})

	res, err := Replay(context.Background(), a, ops, &Options{VerifyEach: true})
	require.NoError(t, err)
	assert.Equal(t, len(ops), res.Ops)
	assert.Positive(t, res.Stats.Maps, "max size past the threshold must produce mappings")
}
