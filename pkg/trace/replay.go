package trace

import (
	"context"
	"errors"
	"fmt"
	"unsafe"

	"github.com/joshuapare/heapkit/heap/alloc"
)

var (
	// ErrUnknownID is returned for operations on a name that is not live.
	ErrUnknownID = errors.New("trace: unknown id")

	// ErrIDInUse is returned when malloc or calloc reuse a live name.
	ErrIDInUse = errors.New("trace: id already in use")

	// ErrMismatch is returned when an expect line does not hold.
	ErrMismatch = errors.New("trace: payload mismatch")
)

// Options configures Replay.
type Options struct {
	// VerifyEach runs the allocator's invariant check after every operation.
	VerifyEach bool

	// OnStep is called after each operation completes.
	OnStep func(i int, op Op)
}

// Result summarizes a replay.
type Result struct {
	Ops      int         // operations executed
	Live     int         // payloads still live at the end
	PeakLive int         // largest number of simultaneously live payloads
	Stats    alloc.Stats // allocator counters after the last operation
	Usage    alloc.Usage // directory totals after the last operation
}

// payload is a live trace name.
type payload struct {
	ptr  unsafe.Pointer
	size uintptr // requested size
}

// Replay executes ops against a. Payloads still live at the end are left
// allocated; the caller decides whether to free them or Reset.
//
// The context is checked between operations.
func Replay(ctx context.Context, a *alloc.Allocator, ops []Op, opts *Options) (Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	live := make(map[string]payload)
	var res Result

	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := step(a, live, op); err != nil {
			return res, opError(op, err)
		}
		if opts.VerifyEach {
			if err := a.Verify(); err != nil {
				return res, opError(op, err)
			}
		}
		res.Ops++
		res.PeakLive = max(res.PeakLive, len(live))
		if opts.OnStep != nil {
			opts.OnStep(i, op)
		}
	}

	res.Live = len(live)
	res.Stats = a.Stats()
	res.Usage = a.Usage()
	return res, nil
}

func opError(op Op, err error) error {
	if op.Line > 0 {
		return fmt.Errorf("line %d: %s: %w", op.Line, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func step(a *alloc.Allocator, live map[string]payload, op Op) error {
	switch op.Kind {
	case OpMalloc, OpCalloc:
		if _, ok := live[op.ID]; ok {
			return ErrIDInUse
		}
		var p payload
		if op.Kind == OpMalloc {
			p = payload{a.Malloc(op.Size), op.Size}
		} else {
			p = payload{a.Calloc(op.Count, op.Size), op.Count * op.Size}
		}
		if p.ptr == nil {
			p.size = 0
		}
		live[op.ID] = p

	case OpRealloc:
		p := live[op.ID] // unknown ids realloc from nil
		ptr := a.Realloc(p.ptr, op.Size)
		if op.Size == 0 {
			delete(live, op.ID)
			return nil
		}
		live[op.ID] = payload{ptr, op.Size}

	case OpFree:
		p, ok := live[op.ID]
		if !ok {
			return ErrUnknownID
		}
		a.Free(p.ptr)
		delete(live, op.ID)

	case OpFill:
		p, ok := live[op.ID]
		if !ok {
			return ErrUnknownID
		}
		buf := alloc.Bytes(p.ptr, p.size)
		for i := range buf {
			buf[i] = op.Byte
		}

	case OpExpect:
		p, ok := live[op.ID]
		if !ok {
			return ErrUnknownID
		}
		if op.N > p.size {
			return fmt.Errorf("%w: %d bytes expected, payload holds %d", ErrMismatch, op.N, p.size)
		}
		for i, b := range alloc.Bytes(p.ptr, op.N) {
			if b != op.Byte {
				return fmt.Errorf("%w: byte %d is %#x", ErrMismatch, i, b)
			}
		}

	case OpVerify:
		return a.Verify()

	default:
		return fmt.Errorf("unsupported operation %s", op.Kind)
	}
	return nil
}
