package alloc

import (
	"errors"
	"fmt"
)

// ErrCorrupt indicates a heap invariant no longer holds.
var ErrCorrupt = errors.New("alloc: heap invariant violated")

// FatalError is the panic value raised when the allocator cannot continue:
// an OS primitive failed or an internal invariant was violated.
type FatalError struct {
	Reason string
	Err    error
}

func (e *FatalError) Error() string {
	if e.Err == nil {
		return "alloc: fatal: " + e.Reason
	}
	return fmt.Sprintf("alloc: fatal: %s: %v", e.Reason, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }
