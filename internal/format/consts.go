// Package format holds the layout constants shared by the heap packages:
// payload alignment, the default mapping threshold and the sentinel errors
// returned across package boundaries. It has no dependencies, so
// both the unsafe region layer and the allocator can import it.
package format

const (
	// Alignment is the byte alignment of every block size and every payload
	// address handed to callers.
	Alignment = 8

	// AlignmentMask is Alignment-1, used for rounding.
	AlignmentMask = Alignment - 1

	// DefaultThreshold is the request size (header included) above which a
	// block gets its own anonymous mapping instead of living in the heap.
	// It is also the amount reserved by the first heap growth.
	DefaultThreshold = 128 * 1024

	// DefaultReservation is the address space reserved up front for the heap.
	// Reserved pages are not committed until the break moves over them.
	DefaultReservation = 1 << 30

	// DefaultPageSize is assumed when the platform cannot report one.
	DefaultPageSize = 4096
)
