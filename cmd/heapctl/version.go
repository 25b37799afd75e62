package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information and the heap layout",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVersion()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// runVersion prints the build stamp followed by the layout an allocator
// built from the current flags would use.
func runVersion() error {
	numbers.Printf("heapctl %s\n", version)
	numbers.Printf("  commit: %s\n", commit)
	numbers.Printf("  built: %s\n", date)

	t := uint64(alloc.DefaultOptions().Threshold)
	if threshold != 0 {
		t = threshold
	}
	numbers.Printf("  header: %d bytes, alignment %d\n", uint64(alloc.HeaderSize), alloc.Alignment)
	numbers.Printf("  mapping threshold: %d bytes\n", t)
	return nil
}
