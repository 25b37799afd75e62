package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlign8(t *testing.T) {
	tests := []struct {
		in, want uintptr
	}{
		{0, 0},
		{1, 8},
		{7, 8},
		{8, 8},
		{9, 16},
		{10, 16},
		{16, 16},
		{200000, 200000},
		{200001, 200008},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, Align8(tc.in), "Align8(%d)", tc.in)
		require.True(t, IsAligned8(Align8(tc.in)))
	}
	require.False(t, IsAligned8(12))
}

func TestAlignPage(t *testing.T) {
	require.Equal(t, uintptr(0), AlignPage(0, 4096))
	require.Equal(t, uintptr(4096), AlignPage(1, 4096))
	require.Equal(t, uintptr(4096), AlignPage(4096, 4096))
	require.Equal(t, uintptr(8192), AlignPage(4097, 4096))
	require.Equal(t, uintptr(65536), AlignPage(65535, 65536))
}
