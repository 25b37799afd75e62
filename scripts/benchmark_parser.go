package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult represents a parsed benchmark result.
type BenchmarkResult struct {
	Name        string
	Operation   string
	Size        string
	Impl        string // "heapkit" or "runtime"
	Iterations  int
	NsPerOp     float64
	BytesPerOp  int64
	AllocsPerOp int64
}

// ComparisonResult pairs the heapkit and Go runtime results of one
// operation and size.
type ComparisonResult struct {
	Operation     string
	Size          string
	HeapkitNs     float64
	RuntimeNs     float64
	Speedup       float64
	HeapkitAllocs int64
	RuntimeMem    int64
	HeapkitOnly   bool
}

var (
	inputFile = flag.String(
		"input",
		"",
		"Input file with benchmark output (stdin if not specified)",
	)
	outputFile = flag.String("output", "", "Output markdown file (stdout if not specified)")
	quiet      = flag.Bool("quiet", false, "Suppress progress output")
)

// Usage:
//
//	go test -run '^$' -bench . ./heap/alloc | go run ./scripts -output BENCH.md
func main() {
	flag.Parse()

	in := os.Stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	results := parseBenchmarks(bufio.NewScanner(in))
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results\n", len(results))
	}

	comparisons := generateComparisons(results)
	report := generateMarkdownReport(comparisons, time.Now())

	if *outputFile == "" {
		fmt.Fprint(os.Stdout, report)
		return
	}
	if err := os.WriteFile(*outputFile, []byte(report), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
	}
}

// BenchmarkMallocFree/heapkit/4096-8    1000000    1045 ns/op    0 B/op    0 allocs/op
var benchmarkRegex = regexp.MustCompile(
	`^(Benchmark\S+)\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+([\d.]+)\s+B/op)?(?:\s+([\d.]+)\s+allocs/op)?`,
)

func parseBenchmarks(scanner *bufio.Scanner) []BenchmarkResult {
	var results []BenchmarkResult

	for scanner.Scan() {
		line := scanner.Text()

		// Lines from go test -json carry the benchmark output in Output
		var testEvent map[string]any
		if err := json.Unmarshal([]byte(line), &testEvent); err == nil {
			if output, ok := testEvent["Output"].(string); ok {
				line = output
			}
		}

		matches := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if matches == nil {
			continue
		}

		r := BenchmarkResult{Name: matches[1]}
		r.Iterations, _ = strconv.Atoi(matches[2])
		r.NsPerOp, _ = strconv.ParseFloat(matches[3], 64)
		if matches[4] != "" {
			r.BytesPerOp, _ = strconv.ParseInt(matches[4], 10, 64)
		}
		if matches[5] != "" {
			r.AllocsPerOp, _ = strconv.ParseInt(matches[5], 10, 64)
		}
		r.Operation, r.Impl, r.Size = splitName(r.Name)
		results = append(results, r)
	}

	return results
}

// splitName parses Benchmark<Op>/<impl>/<size>-<procs>. Benchmarks without
// an implementation level are reported as heapkit-only.
func splitName(name string) (operation, impl, size string) {
	parts := strings.Split(strings.TrimPrefix(name, "Benchmark"), "/")
	last := parts[len(parts)-1]
	if i := strings.LastIndex(last, "-"); i > 0 {
		parts[len(parts)-1] = last[:i]
	}

	switch len(parts) {
	case 1:
		return parts[0], "heapkit", ""
	case 2:
		return parts[0], "heapkit", parts[1]
	default:
		return parts[0], parts[1], parts[len(parts)-1]
	}
}

func generateComparisons(results []BenchmarkResult) []ComparisonResult {
	type key struct {
		operation string
		size      string
	}
	grouped := make(map[key]map[string]BenchmarkResult)
	for _, r := range results {
		k := key{r.Operation, r.Size}
		if grouped[k] == nil {
			grouped[k] = make(map[string]BenchmarkResult)
		}
		grouped[k][r.Impl] = r
	}

	var comparisons []ComparisonResult
	for k, impls := range grouped {
		hk, ok := impls["heapkit"]
		if !ok {
			continue
		}
		c := ComparisonResult{
			Operation:     k.operation,
			Size:          k.size,
			HeapkitNs:     hk.NsPerOp,
			HeapkitAllocs: hk.AllocsPerOp,
		}
		if rt, ok := impls["runtime"]; ok && hk.NsPerOp > 0 {
			c.RuntimeNs = rt.NsPerOp
			c.RuntimeMem = rt.BytesPerOp
			c.Speedup = rt.NsPerOp / hk.NsPerOp
		} else {
			c.HeapkitOnly = true
		}
		comparisons = append(comparisons, c)
	}

	// Sort by operation then numeric size
	sort.Slice(comparisons, func(i, j int) bool {
		if comparisons[i].Operation != comparisons[j].Operation {
			return comparisons[i].Operation < comparisons[j].Operation
		}
		si, _ := strconv.Atoi(comparisons[i].Size)
		sj, _ := strconv.Atoi(comparisons[j].Size)
		return si < sj
	})

	return comparisons
}

func generateMarkdownReport(comparisons []ComparisonResult, now time.Time) string {
	var sb strings.Builder

	sb.WriteString("# Allocator Benchmark Report\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", now.Format("2006-01-02 15:04:05"))

	faster, comparable := 0, 0
	for _, c := range comparisons {
		if c.HeapkitOnly {
			continue
		}
		comparable++
		if c.Speedup > 1.0 {
			faster++
		}
	}

	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- **Total benchmarks**: %d\n", len(comparisons))
	fmt.Fprintf(&sb, "- **Compared with the Go runtime**: %d\n", comparable)
	if comparable > 0 {
		fmt.Fprintf(&sb, "  - heapkit faster: %d (%.1f%%)\n", faster, float64(faster)/float64(comparable)*100)
	}
	sb.WriteString("\n")

	sb.WriteString("## Detailed Results\n\n")
	sb.WriteString("| Operation | Size | heapkit (ns/op) | runtime (ns/op) | Speedup | runtime GC bytes/op | heapkit allocs/op |\n")
	sb.WriteString("|-----------|------|-----------------|-----------------|---------|---------------------|-------------------|\n")
	for _, c := range comparisons {
		if c.HeapkitOnly {
			fmt.Fprintf(&sb, "| %s | %s | %s | *N/A* | *heapkit only* | *N/A* | %d |\n",
				c.Operation, c.Size, formatNumber(c.HeapkitNs), c.HeapkitAllocs)
			continue
		}
		indicator := "✓"
		if c.Speedup < 1.0 {
			indicator = "✗"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %.2fx %s | %s | %d |\n",
			c.Operation, c.Size, formatNumber(c.HeapkitNs), formatNumber(c.RuntimeNs),
			c.Speedup, indicator, formatBytes(c.RuntimeMem), c.HeapkitAllocs)
	}
	sb.WriteString("\n")

	sb.WriteString("## Notes\n\n")
	sb.WriteString("- **Speedup > 1.0**: heapkit is faster ✓\n")
	sb.WriteString("- **runtime GC bytes/op**: garbage the Go runtime variant leaves for the collector\n")
	sb.WriteString("- **heapkit allocs/op**: Go heap allocations made by the allocator itself, expected 0\n")

	return sb.String()
}

func formatNumber(n float64) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.2fM", n/1000000)
	} else if n >= 1000 {
		return fmt.Sprintf("%.1fK", n/1000)
	}
	return fmt.Sprintf("%.0f", n)
}

func formatBytes(b int64) string {
	if b >= 1024*1024 {
		return fmt.Sprintf("%.2fMB", float64(b)/(1024*1024))
	} else if b >= 1024 {
		return fmt.Sprintf("%.1fKB", float64(b)/1024)
	}
	return fmt.Sprintf("%dB", b)
}
