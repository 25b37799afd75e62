package trace

import (
	"math/rand"
	"strconv"
)

// GenerateOptions shapes a random workload.
type GenerateOptions struct {
	Ops     int     // operations to produce
	Seed    int64   // random seed; equal seeds give equal traces
	MaxSize uintptr // largest request size
}

// Generate produces a random but self-consistent trace: every payload is
// filled after it is created and its contents are checked before every
// resize and free.
func Generate(opts GenerateOptions) []Op {
	rng := rand.New(rand.NewSource(opts.Seed))
	maxSize := max(opts.MaxSize, 1)

	type entry struct {
		id   string
		size uintptr
		tag  byte
	}
	var live []entry
	next := 0
	ops := make([]Op, 0, opts.Ops)

	randomSize := func() uintptr {
		// mostly small requests, occasionally anything up to maxSize
		if rng.Intn(8) == 0 {
			return 1 + uintptr(rng.Int63n(int64(maxSize)))
		}
		return 1 + uintptr(rng.Int63n(int64(min(maxSize, 512))))
	}

	for len(ops) < opts.Ops {
		tag := byte(rng.Intn(256))
		switch r := rng.Intn(10); {
		case r < 4 || len(live) == 0:
			id := "p" + strconv.Itoa(next)
			next++
			size := randomSize()
			if r == 0 {
				count := uintptr(1 + rng.Intn(8))
				elem := max(size/count, 1)
				ops = append(ops,
					Op{Kind: OpCalloc, ID: id, Count: count, Size: elem},
					Op{Kind: OpExpect, ID: id, Byte: 0, N: count * elem})
				size = count * elem
			} else {
				ops = append(ops, Op{Kind: OpMalloc, ID: id, Size: size})
			}
			ops = append(ops, Op{Kind: OpFill, ID: id, Byte: tag})
			live = append(live, entry{id, size, tag})

		case r < 7:
			i := rng.Intn(len(live))
			e := live[i]
			ops = append(ops,
				Op{Kind: OpExpect, ID: e.id, Byte: e.tag, N: e.size},
				Op{Kind: OpFree, ID: e.id})
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]

		case r < 9:
			i := rng.Intn(len(live))
			e := live[i]
			size := randomSize()
			ops = append(ops,
				Op{Kind: OpRealloc, ID: e.id, Size: size},
				Op{Kind: OpExpect, ID: e.id, Byte: e.tag, N: min(e.size, size)},
				Op{Kind: OpFill, ID: e.id, Byte: tag})
			live[i] = entry{e.id, size, tag}

		default:
			ops = append(ops, Op{Kind: OpVerify})
		}
	}
	return ops[:opts.Ops]
}
