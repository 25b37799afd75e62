package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/heapkit/heap/alloc"
)

var (
	// Global flags
	verbose   bool
	quiet     bool
	jsonOut   bool
	threshold uint64
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Replay and stress-test allocation traces",
	Long: `heapctl drives the heapkit allocator with recorded or generated
allocation traces, checking heap invariants and payload contents as it goes,
and reports allocator statistics.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log allocator events to stderr")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().Uint64Var(&threshold, "threshold", 0, "Mapping threshold in bytes (default 128 KiB)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// numbers formats integers with digit grouping.
var numbers = message.NewPrinter(language.English)

// newAllocator builds an allocator from the global flags. OS failures end
// the process.
func newAllocator() *alloc.Allocator {
	opts := alloc.DefaultOptions()
	opts.Fatal = alloc.ExitOnFatal
	if threshold != 0 {
		opts.Threshold = uintptr(threshold)
	}
	if verbose {
		opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	} else {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return alloc.New(opts)
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		numbers.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
