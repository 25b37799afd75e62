package alloc

import (
	"log/slog"

	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/osmem"
)

// Provider supplies raw memory to an Allocator: a forward-only heap break
// and individually mapped regions. See NewSystemProvider.
type Provider interface {
	// ExtendHeap moves the break forward by delta bytes and returns the
	// previous break.
	ExtendHeap(delta uintptr) (uintptr, error)

	// MapAnonymous returns a fresh private read/write region of size bytes.
	MapAnonymous(size uintptr) (uintptr, error)

	// Unmap releases a region returned by MapAnonymous.
	Unmap(base, size uintptr) error

	// PageSize is the system page size.
	PageSize() int

	// Release drops every resource held by the provider.
	Release() error
}

// NewSystemProvider returns the platform provider: mmap/mprotect on unix,
// VirtualAlloc on windows, Go memory elsewhere. reservation bounds the heap;
// 0 selects 1 GiB of address space, which is reserved but not committed.
func NewSystemProvider(reservation uintptr) (Provider, error) {
	return osmem.New(reservation)
}

// NewGoProvider returns a provider backed by ordinary Go memory. The whole
// reservation is allocated up front.
func NewGoProvider(reservation uintptr) (Provider, error) {
	return osmem.NewGoHeap(reservation)
}

// Options configures an Allocator.
type Options struct {
	// Threshold is the header-inclusive request size above which a block
	// gets its own mapping. It is also the size of the first heap growth.
	// Default: 128 KiB
	Threshold uintptr

	// Reservation is the address space reserved for the heap by the default
	// provider. Ignored when NewProvider is set.
	// Default: 1 GiB
	Reservation uintptr

	// NewProvider creates the memory provider. It is called lazily on the
	// first allocation and again after Reset.
	// Default: NewSystemProvider(Reservation)
	NewProvider func() (Provider, error)

	// Logger receives debug events (heap growth, mappings, relocations) and
	// fatal errors.
	// Default: discard, or stderr at debug level when HEAPKIT_LOG_ALLOC is set
	Logger *slog.Logger

	// Fatal is called with a description when the allocator cannot
	// continue. It must not return; if it does, the allocator panics with a
	// *FatalError.
	// Default: nil (panic)
	Fatal func(reason string)
}

// DefaultOptions returns the options matching a classic libc-style heap.
func DefaultOptions() *Options {
	return &Options{
		Threshold:   format.DefaultThreshold,
		Reservation: format.DefaultReservation,
	}
}

// withDefaults fills the zero fields of a copy of o.
func (o *Options) withDefaults() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.Threshold == 0 {
		out.Threshold = format.DefaultThreshold
	}
	out.Threshold = format.Align8(out.Threshold)
	if out.Reservation == 0 {
		out.Reservation = format.DefaultReservation
	}
	if out.NewProvider == nil {
		reservation := out.Reservation
		out.NewProvider = func() (Provider, error) { return NewSystemProvider(reservation) }
	}
	if out.Logger == nil {
		out.Logger = defaultLogger()
	}
	return out
}
