package region

import "unsafe"

// Bytes returns a slice over n bytes of raw memory starting at addr.
// A zero addr or n yields nil.
func Bytes(addr, n uintptr) []byte {
	if addr == 0 || n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n)
}

// Addr returns the numeric address of p.
func Addr(p unsafe.Pointer) uintptr {
	return uintptr(p)
}

// Zero clears n bytes at addr.
func Zero(addr, n uintptr) {
	clear(Bytes(addr, n))
}

// Move copies n bytes from src to dst. Overlapping ranges are handled.
func Move(dst, src, n uintptr) {
	if n == 0 || dst == src {
		return
	}
	copy(Bytes(dst, n), Bytes(src, n))
}
