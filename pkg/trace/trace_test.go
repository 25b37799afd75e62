package trace

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	src := `# warm-up
malloc a 10

calloc b 4 0x10
  realloc a 1_000
fill a 0xAB
expect a 171 10
free b
verify
`
	ops, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	want := []Op{
		{Kind: OpMalloc, Line: 2, ID: "a", Size: 10},
		{Kind: OpCalloc, Line: 4, ID: "b", Count: 4, Size: 16},
		{Kind: OpRealloc, Line: 5, ID: "a", Size: 1000},
		{Kind: OpFill, Line: 6, ID: "a", Byte: 0xAB},
		{Kind: OpExpect, Line: 7, ID: "a", Byte: 0xAB, N: 10},
		{Kind: OpFree, Line: 8, ID: "b"},
		{Kind: OpVerify, Line: 9},
	}
	assert.Equal(t, want, ops)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"unknown op", "alloc a 1", `unknown operation "alloc"`},
		{"missing size", "malloc a", "malloc takes 2 arguments, got 1"},
		{"extra args", "free a b", "free takes 1 arguments, got 2"},
		{"bad size", "malloc a ten", `invalid size "ten"`},
		{"negative size", "malloc a -1", `invalid size "-1"`},
		{"byte overflow", "fill a 256", `invalid byte "256"`},
		{"verify args", "verify now", "verify takes 0 arguments, got 1"},
		{"calloc overflow", "calloc a 0x100000000 0x100000000", "overflows"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader("# header\n" + tt.src))
			require.ErrorIs(t, err, ErrSyntax)
			assert.Contains(t, err.Error(), "line 2")
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestWrite_RoundTrips(t *testing.T) {
	ops := Generate(GenerateOptions{Ops: 300, Seed: 7, MaxSize: 1 << 18})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ops))

	parsed, err := Parse(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, len(ops))
	for i := range ops {
		parsed[i].Line = 0
	}
	assert.Equal(t, ops, parsed)
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(GenerateOptions{Ops: 500, Seed: 42, MaxSize: 4096})
	b := Generate(GenerateOptions{Ops: 500, Seed: 42, MaxSize: 4096})
	c := Generate(GenerateOptions{Ops: 500, Seed: 43, MaxSize: 4096})

	assert.Len(t, a, 500)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Empty(t, Generate(GenerateOptions{}))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "realloc", OpRealloc.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}
