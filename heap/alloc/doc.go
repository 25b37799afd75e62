// Package alloc implements a best-fit heap allocator with embedded block
// headers, in the style of a C library malloc.
//
// # Overview
//
// An Allocator manages one heap whose break only moves forward, plus one
// anonymous mapping per large block. Every block carries a hidden header
// immediately before its payload; all live blocks are threaded on a doubly
// linked Directory in the order they were requested.
//
// # Allocator API
//
//   - Malloc(size): return an 8-byte aligned payload of at least size bytes
//   - Free(ptr): release a payload; unknown pointers are ignored
//   - Calloc(count, size): Malloc(count*size) with the payload zeroed
//   - Realloc(ptr, size): resize in place when possible, relocate otherwise
//
// A zero size or a nil pointer where a payload is expected yields nil; there
// are no error returns on the hot path.
//
// # Allocation policy
//
// Requests whose header plus payload exceed the threshold (128 KiB by
// default) are mapped individually. Smaller requests are served, in order, by:
//
//  1. the smallest free block that fits (best-fit), split when the slack can
//     hold another header;
//  2. growing the last block in place when it is free;
//  3. growing the heap by exactly header+size.
//
// The very first heap growth reserves a full threshold worth of memory and
// leaves the remainder as a free block (priming). Released heap blocks are
// merged with free neighbours immediately, so the Directory never holds two
// adjacent free blocks.
//
// # Resizing
//
// Realloc keeps the payload where it is when it can: shrinking splits the
// block, growing first absorbs a free successor, then extends the heap when
// the block is last, then reuses a free block sitting at the end of the heap.
// Only when all of that fails is the payload copied to a fresh block.
//
// # Failure model
//
// Misuse (zero sizes, foreign pointers, resizing a free block) is a silent
// no-op. Failures of the underlying OS primitives are fatal: the Options.Fatal
// hook is invoked and the allocator panics with a *FatalError if the hook
// returns.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must serialize access
// externally, for example with heap.Locked.
package alloc
