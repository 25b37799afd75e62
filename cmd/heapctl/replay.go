package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/pkg/trace"
)

var (
	replayVerify bool
	replayDump   bool
)

func init() {
	cmd := newReplayCmd()
	cmd.Flags().BoolVar(&replayVerify, "verify", false, "Check heap invariants after every operation")
	cmd.Flags().BoolVar(&replayDump, "dump", false, "Print the block directory after the replay")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace>",
		Short: "Replay an allocation trace",
		Long: `The replay command executes a trace file against a fresh allocator
and reports the resulting statistics. Use "-" to read the trace from stdin.

Trace lines:
  malloc  <id> <size>
  calloc  <id> <count> <size>
  realloc <id> <size>
  free    <id>
  fill    <id> <byte>
  expect  <id> <byte> <n>
  verify

Example:
  heapctl replay workload.trace
  heapctl replay workload.trace --verify --dump
  heapctl replay workload.trace --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), args)
		},
	}
	return cmd
}

func runReplay(ctx context.Context, args []string) error {
	path := args[0]

	in := os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open trace: %w", err)
		}
		defer f.Close()
		in = f
	}

	ops, err := trace.Parse(in)
	if err != nil {
		return err
	}

	a := newAllocator()
	defer a.Reset()

	res, err := trace.Replay(ctx, a, ops, &trace.Options{VerifyEach: replayVerify})
	if err != nil {
		return fmt.Errorf("replay failed after %d operations: %w", res.Ops, err)
	}
	return printReport(newReport(path, res, a, replayDump))
}
