package heap

import (
	"sync"
	"unsafe"

	"github.com/joshuapare/heapkit/heap/alloc"
)

// Locked serializes every call into an allocator with a mutex.
type Locked struct {
	mu sync.Mutex
	a  *alloc.Allocator
}

// NewLocked wraps a. The caller must not use a directly afterwards.
func NewLocked(a *alloc.Allocator) *Locked {
	return &Locked{a: a}
}

func (l *Locked) Malloc(size uintptr) unsafe.Pointer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Malloc(size)
}

func (l *Locked) Free(ptr unsafe.Pointer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.a.Free(ptr)
}

func (l *Locked) Calloc(count, size uintptr) unsafe.Pointer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Calloc(count, size)
}

func (l *Locked) Realloc(ptr unsafe.Pointer, size uintptr) unsafe.Pointer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Realloc(ptr, size)
}

func (l *Locked) UsableSize(ptr unsafe.Pointer) uintptr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.UsableSize(ptr)
}

func (l *Locked) Stats() alloc.Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Stats()
}

func (l *Locked) Verify() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Verify()
}

func (l *Locked) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Reset()
}

// Do runs fn with the lock held, for callers that need several calls to
// appear atomic.
func (l *Locked) Do(fn func(a *alloc.Allocator)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.a)
}
