package format

// Alignment utilities for block sizes and addresses.

// Align8 returns n rounded up to the next 8-byte boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
//	Align8(16) = 16
func Align8(n uintptr) uintptr {
	return (n + AlignmentMask) &^ AlignmentMask
}

// IsAligned8 reports whether n sits on an 8-byte boundary.
func IsAligned8(n uintptr) bool {
	return n&AlignmentMask == 0
}

// AlignPage returns n rounded up to a multiple of pageSize.
// pageSize must be a power of two.
//
// Example (pageSize = 4096):
//
//	AlignPage(1, 4096)    = 4096
//	AlignPage(4096, 4096) = 4096
//	AlignPage(4097, 4096) = 8192
func AlignPage(n uintptr, pageSize int) uintptr {
	mask := uintptr(pageSize) - 1
	return (n + mask) &^ mask
}
