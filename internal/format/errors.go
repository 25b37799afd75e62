package format

import "errors"

var (
	// ErrOutOfReservation indicates the heap break would move past the
	// reserved address range.
	ErrOutOfReservation = errors.New("osmem: heap reservation exhausted")

	// ErrOverflow indicates address arithmetic overflowed.
	ErrOverflow = errors.New("osmem: address arithmetic overflow")

	// ErrBadRegion indicates an unmap of a region the provider does not own.
	ErrBadRegion = errors.New("osmem: unknown mapped region")

	// ErrReleased indicates the provider was used after Release.
	ErrReleased = errors.New("osmem: provider released")
)
