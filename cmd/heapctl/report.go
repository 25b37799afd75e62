package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/pkg/trace"
)

// Report is the machine-readable outcome of a replay.
type Report struct {
	Source        string      `json:"source"`
	Ops           int         `json:"ops"`
	Live          int         `json:"live"`
	PeakLive      int         `json:"peak_live"`
	Stats         alloc.Stats `json:"stats"`
	Usage         alloc.Usage `json:"usage"`
	Fragmentation float64     `json:"fragmentation"`
	Blocks        []BlockRow  `json:"blocks,omitempty"`
}

// BlockRow is one directory entry in a dump.
type BlockRow struct {
	Header  string `json:"header"`
	Payload string `json:"payload"`
	Size    uint64 `json:"size"`
	Status  string `json:"status"`
}

func newReport(source string, res trace.Result, a *alloc.Allocator, dump bool) Report {
	r := Report{
		Source:        source,
		Ops:           res.Ops,
		Live:          res.Live,
		PeakLive:      res.PeakLive,
		Stats:         res.Stats,
		Usage:         res.Usage,
		Fragmentation: res.Usage.Fragmentation(),
	}
	if dump {
		for _, b := range a.Blocks() {
			r.Blocks = append(r.Blocks, BlockRow{
				Header:  fmt.Sprintf("%#x", b.Header),
				Payload: fmt.Sprintf("%#x", b.Payload),
				Size:    uint64(b.Size),
				Status:  b.Status.String(),
			})
		}
	}
	return r
}

func printReport(r Report) error {
	if jsonOut {
		return printJSON(r)
	}

	st, u := r.Stats, r.Usage
	printInfo("%s: %d operations, %d live payloads (peak %d)\n", r.Source, r.Ops, r.Live, r.PeakLive)
	printInfo("\nCalls:\n")
	printInfo("  malloc %d  calloc %d  realloc %d  free %d\n", st.Mallocs, st.Callocs, st.Reallocs, st.Frees)
	printInfo("\nPolicy:\n")
	printInfo("  splits %d  coalesces %d  in-place grows %d  relocations %d\n",
		st.Splits, st.Coalesces, st.InPlaceGrows, st.Relocations)
	printInfo("\nMemory:\n")
	printInfo("  heap %d bytes in %d growths\n", uint64(st.HeapBytes), st.HeapGrows)
	printInfo("  mappings %d live (%d bytes), %d created, %d released\n",
		st.MappedRegions, uint64(st.MappedBytes), st.Maps, st.Unmaps)
	printInfo("\nBlocks:\n")
	printInfo("  %d total: %d allocated (%d bytes), %d free (%d bytes), %d mapped (%d bytes)\n",
		u.Blocks, u.AllocatedBlocks, uint64(u.AllocatedBytes), u.FreeBlocks, uint64(u.FreeBytes),
		u.MappedBlocks, uint64(u.MappedBytes))
	printInfo("  largest free %d bytes, fragmentation %.1f%%\n", uint64(u.LargestFree), 100*r.Fragmentation)

	if len(r.Blocks) > 0 && !quiet {
		printInfo("\nDirectory:\n")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  HEADER\tPAYLOAD\tSIZE\tSTATUS")
		for _, b := range r.Blocks {
			fmt.Fprintf(w, "  %s\t%s\t%d\t%s\n", b.Header, b.Payload, b.Size, b.Status)
		}
		return w.Flush()
	}
	return nil
}
