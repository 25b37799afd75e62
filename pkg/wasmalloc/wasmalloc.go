// Package wasmalloc serves wazero linear memories from a heapkit allocator.
//
// Install it on the context used to instantiate modules:
//
//	ctx = experimental.WithMemoryAllocator(ctx, wasmalloc.New(a))
//
// Each linear memory is one payload. Growing a memory resizes the payload,
// which may move it; wazero picks up the new buffer from Reallocate.
package wasmalloc

import (
	"errors"
	"unsafe"

	"github.com/tetratelabs/wazero/experimental"

	"github.com/joshuapare/heapkit/heap/alloc"
)

var errInvalidReallocation = errors.New("wasmalloc: invalid reallocation")

// Heap is the part of an allocator a linear memory needs. *alloc.Allocator
// and *heap.Locked both satisfy it; use the latter when modules run on
// several goroutines.
type Heap interface {
	Calloc(count, size uintptr) unsafe.Pointer
	Realloc(ptr unsafe.Pointer, size uintptr) unsafe.Pointer
	Free(ptr unsafe.Pointer)
	UsableSize(ptr unsafe.Pointer) uintptr
}

// New returns a memory allocator backed by h.
func New(h Heap) experimental.MemoryAllocator {
	return experimental.MemoryAllocatorFunc(func(cap, max uint64) experimental.LinearMemory {
		m := &linearMemory{heap: h, max: max}
		if cap > 0 {
			m.ptr = h.Calloc(1, uintptr(cap))
			m.capacity = h.UsableSize(m.ptr)
		}
		return m
	})
}

// linearMemory exposes the first size bytes of one payload. Bytes past size
// are kept zeroed so growth never reveals stale data.
type linearMemory struct {
	heap     Heap
	ptr      unsafe.Pointer
	size     uintptr // bytes exposed to the module
	capacity uintptr // usable bytes behind ptr
	max      uint64
}

func (m *linearMemory) Reallocate(size uint64) []byte {
	if size > m.max {
		panic(errInvalidReallocation)
	}
	n := uintptr(size)
	if n > m.capacity {
		if m.ptr == nil {
			m.ptr = m.heap.Calloc(1, n)
		} else {
			m.ptr = m.heap.Realloc(m.ptr, n)
		}
		m.capacity = m.heap.UsableSize(m.ptr)
		clear(alloc.Bytes(m.ptr, m.capacity)[m.size:])
	} else if n < m.size {
		clear(alloc.Bytes(m.ptr, m.size)[n:])
	}
	m.size = n
	if n == 0 {
		return []byte{}
	}
	return alloc.Bytes(m.ptr, n)
}

func (m *linearMemory) Free() {
	if m.ptr != nil {
		m.heap.Free(m.ptr)
	}
	m.ptr, m.size, m.capacity = nil, 0, 0
}
