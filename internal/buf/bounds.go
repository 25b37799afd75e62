// Package buf contains overflow-checked address arithmetic for the memory
// providers. Addresses and sizes are uintptr; every helper reports ok = false
// instead of silently wrapping around.
package buf

import "fmt"

// AddOverflowSafe adds a and b, returning ok = false when the result would wrap.
func AddOverflowSafe(a, b uintptr) (uintptr, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// MulOverflowSafe multiplies a and b, returning ok = false when the result would wrap.
func MulOverflowSafe(a, b uintptr) (uintptr, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	product := a * b
	if product/b != a {
		return 0, false
	}
	return product, true
}

// CheckRange validates that [start, start+size) lies inside [base, limit).
// It returns the end of the range when valid, or an error describing the
// specific failure (overflow or out of bounds).
//
//	end, err := buf.CheckRange(base, limit, brk, delta)
//	if err != nil {
//	    return 0, fmt.Errorf("extend heap: %w", err)
//	}
func CheckRange(base, limit, start, size uintptr) (uintptr, error) {
	if start < base {
		return 0, fmt.Errorf("bounds: start=%#x < base=%#x", start, base)
	}
	end, ok := AddOverflowSafe(start, size)
	if !ok {
		return 0, fmt.Errorf("overflow: start=%#x + size=%d", start, size)
	}
	if end > limit {
		return 0, fmt.Errorf("bounds: end=%#x > limit=%#x", end, limit)
	}
	return end, nil
}
