package heap

import (
	"sync"
	"unsafe"

	"github.com/joshuapare/heapkit/heap/alloc"
)

var (
	defaultOnce sync.Once
	defaultHeap *alloc.Allocator
)

// Default returns the process-wide allocator, creating it on first use.
func Default() *alloc.Allocator {
	defaultOnce.Do(func() {
		opts := alloc.DefaultOptions()
		opts.Fatal = alloc.ExitOnFatal
		defaultHeap = alloc.New(opts)
	})
	return defaultHeap
}

// Malloc allocates size bytes from the default allocator.
func Malloc(size uintptr) unsafe.Pointer { return Default().Malloc(size) }

// Free releases a payload of the default allocator.
func Free(ptr unsafe.Pointer) { Default().Free(ptr) }

// Calloc allocates count*size zeroed bytes from the default allocator.
func Calloc(count, size uintptr) unsafe.Pointer { return Default().Calloc(count, size) }

// Realloc resizes a payload of the default allocator.
func Realloc(ptr unsafe.Pointer, size uintptr) unsafe.Pointer { return Default().Realloc(ptr, size) }

// Stats returns the default allocator's counters.
func Stats() alloc.Stats { return Default().Stats() }

// Reset releases all memory held by the default allocator. Every payload it
// handed out becomes invalid.
func Reset() error { return Default().Reset() }
