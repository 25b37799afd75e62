/*
Package heap provides a process-wide malloc/free/calloc/realloc over a single
default allocator.

# Quick Start

	p := heap.Malloc(64)
	defer heap.Free(p)
	buf := alloc.Bytes(p, 64)

# Default Allocator

The default allocator is created on first use with alloc.DefaultOptions: a
128 KiB mapping threshold and 1 GiB of reserved heap address space. Failures
of the OS primitives end the process through alloc.ExitOnFatal.

Use Default to reach the allocator directly for introspection:

	if err := heap.Default().Verify(); err != nil {
	    log.Fatal(err)
	}

# Concurrency

The package-level functions are not safe for concurrent use, matching the
allocator itself. Hosts calling from several goroutines wrap an allocator in
Locked:

	l := heap.NewLocked(alloc.New(nil))
	p := l.Malloc(32)
	l.Free(p)

# Memory Ownership

Payloads live outside the Go heap. The garbage collector neither scans nor
frees them, so Go pointers must not be stored in a payload, and every payload
must be released with Free (or Realloc to 0).
*/
package heap
