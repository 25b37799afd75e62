// Package region is the only place where the heap touches raw memory.
//
// A Block is a handle on a block header living at a fixed address inside
// memory owned by an osmem.Provider. The header is immediately followed by the
// payload handed out to callers:
//
//	+--------+--------+---------+---------+---------+-------------------+
//	| size   | status | (pad)   | prev    | next    | payload (size B)  |
//	+--------+--------+---------+---------+---------+-------------------+
//	^ Block.Addr()                                  ^ Block.Payload()
//
// Everything above this package (directory walks, best-fit, split, coalesce)
// works through Block methods and never does pointer arithmetic itself.
// prev/next are stored as plain addresses; the memory they point into is kept
// alive by the provider, not by the Go garbage collector.
package region

import (
	"unsafe"

	"github.com/joshuapare/heapkit/internal/format"
)

// Status is the lifecycle state recorded in a block header.
type Status uint32

const (
	// StatusFree marks a heap block available for reuse.
	StatusFree Status = iota
	// StatusAlloc marks a heap block owned by a caller.
	StatusAlloc
	// StatusMapped marks a block backed by its own anonymous mapping.
	StatusMapped
)

func (s Status) String() string {
	switch s {
	case StatusFree:
		return "free"
	case StatusAlloc:
		return "allocated"
	case StatusMapped:
		return "mapped"
	default:
		return "invalid"
	}
}

type header struct {
	size   uintptr
	status Status
	_      uint32
	prev   uintptr
	next   uintptr
}

// HeaderSize is the number of bytes reserved in front of every payload,
// rounded up so payloads stay 8-byte aligned.
const HeaderSize = (unsafe.Sizeof(header{}) + format.AlignmentMask) &^ format.AlignmentMask

// Block is the address of a block header. The zero Block is nil.
type Block uintptr

// Nil is the absent block.
const Nil Block = 0

// At returns the block whose header starts at addr.
func At(addr uintptr) Block {
	return Block(addr)
}

// Init writes a fresh header: the given size and status, no links.
func (b Block) Init(size uintptr, status Status) {
	h := b.h()
	h.size = size
	h.status = status
	h.prev = 0
	h.next = 0
}

func (b Block) h() *header {
	return (*header)(unsafe.Pointer(b))
}

// IsNil reports whether b is the absent block.
func (b Block) IsNil() bool { return b == Nil }

// Addr is the header address.
func (b Block) Addr() uintptr { return uintptr(b) }

// Payload is the address of the first payload byte.
func (b Block) Payload() uintptr { return uintptr(b) + HeaderSize }

// Pointer returns the payload as an unsafe.Pointer for callers.
func (b Block) Pointer() unsafe.Pointer {
	return unsafe.Pointer(b.Payload())
}

// End is the address one past the last payload byte.
func (b Block) End() uintptr { return b.Payload() + b.Size() }

// Footprint is header plus payload.
func (b Block) Footprint() uintptr { return HeaderSize + b.Size() }

func (b Block) Size() uintptr          { return b.h().size }
func (b Block) SetSize(size uintptr)   { b.h().size = size }
func (b Block) Status() Status         { return b.h().status }
func (b Block) SetStatus(s Status)     { b.h().status = s }
func (b Block) Prev() Block            { return Block(b.h().prev) }
func (b Block) SetPrev(p Block)        { b.h().prev = uintptr(p) }
func (b Block) Next() Block            { return Block(b.h().next) }
func (b Block) SetNext(n Block)        { b.h().next = uintptr(n) }
func (b Block) Is(s Status) bool       { return b.h().status == s }
func (b Block) Bytes(n uintptr) []byte { return Bytes(b.Payload(), n) }

// Carve returns the block that starts offset payload bytes into b. The header
// of the returned block is not initialized.
func (b Block) Carve(offset uintptr) Block {
	return Block(b.Payload() + offset)
}
