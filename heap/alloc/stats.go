package alloc

import (
	"unsafe"

	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/region"
)

// Status is the lifecycle state of a block.
type Status = region.Status

// Block states as reported by Blocks.
const (
	StatusFree   = region.StatusFree
	StatusAlloc  = region.StatusAlloc
	StatusMapped = region.StatusMapped
)

// HeaderSize is the number of hidden bytes in front of every payload.
const HeaderSize = region.HeaderSize

// Alignment of every payload address and block size.
const Alignment = format.Alignment

// Stats holds allocator counters. Entry-point counters only count calls that
// reached a block: Malloc(0) or Free(nil) are not counted.
type Stats struct {
	Mallocs  uint64 // Malloc calls with a non-zero size
	Frees    uint64 // Free calls on a known payload
	Callocs  uint64 // Calloc calls with non-zero arguments
	Reallocs uint64 // Realloc calls on a live payload with a non-zero size

	Splits       uint64 // free remainders carved off a block
	Coalesces    uint64 // merges of two adjacent free blocks
	InPlaceGrows uint64 // Realloc growths that kept the payload where it was
	Relocations  uint64 // payloads copied to another block

	HeapGrows uint64  // calls that moved the break
	HeapBytes uintptr // bytes between heap start and break

	Maps          uint64  // anonymous mappings created
	Unmaps        uint64  // anonymous mappings released
	MappedRegions int     // mappings currently live
	MappedBytes   uintptr // bytes currently mapped, headers included
}

// Stats returns a copy of the allocator counters.
func (a *Allocator) Stats() Stats {
	return a.stats
}

// Usage summarizes the directory. It walks every block.
type Usage struct {
	Blocks          int
	FreeBlocks      int
	AllocatedBlocks int
	MappedBlocks    int

	FreeBytes      uintptr // payload bytes in free blocks
	AllocatedBytes uintptr // payload bytes in allocated heap blocks
	MappedBytes    uintptr // payload bytes in mapped blocks
	LargestFree    uintptr // largest free payload
}

// Fragmentation is the share of free heap bytes outside the largest free
// block: 0 when all free memory is contiguous.
func (u Usage) Fragmentation() float64 {
	if u.FreeBytes == 0 {
		return 0
	}
	return 1 - float64(u.LargestFree)/float64(u.FreeBytes)
}

// Usage walks the directory and totals block counts and sizes.
func (a *Allocator) Usage() Usage {
	var u Usage
	a.dir.each(func(b region.Block) bool {
		u.Blocks++
		switch b.Status() {
		case region.StatusFree:
			u.FreeBlocks++
			u.FreeBytes += b.Size()
			u.LargestFree = max(u.LargestFree, b.Size())
		case region.StatusAlloc:
			u.AllocatedBlocks++
			u.AllocatedBytes += b.Size()
		case region.StatusMapped:
			u.MappedBlocks++
			u.MappedBytes += b.Size()
		}
		return true
	})
	return u
}

// BlockInfo describes one directory entry.
type BlockInfo struct {
	Header  uintptr
	Payload uintptr
	Size    uintptr
	Status  Status
}

// Blocks returns a snapshot of the directory in order.
func (a *Allocator) Blocks() []BlockInfo {
	var out []BlockInfo
	a.dir.each(func(b region.Block) bool {
		out = append(out, BlockInfo{
			Header:  b.Addr(),
			Payload: b.Payload(),
			Size:    b.Size(),
			Status:  b.Status(),
		})
		return true
	})
	return out
}

// UsableSize returns the payload capacity behind ptr, or 0 when ptr is nil,
// unknown or free.
func (a *Allocator) UsableSize(ptr unsafe.Pointer) uintptr {
	if ptr == nil {
		return 0
	}
	b := a.dir.findByPayload(region.Addr(ptr))
	if b.IsNil() || b.Is(region.StatusFree) {
		return 0
	}
	return b.Size()
}

// Threshold is the current mapping threshold.
func (a *Allocator) Threshold() uintptr { return a.threshold }

// PageSize is the provider's page size, or 0 before the first allocation.
func (a *Allocator) PageSize() int { return a.pageSize }

// Bytes views n bytes of payload at ptr as a slice. The slice is only valid
// while the payload is live.
func Bytes(ptr unsafe.Pointer, n uintptr) []byte {
	return region.Bytes(region.Addr(ptr), n)
}
