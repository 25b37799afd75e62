package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/pkg/trace"
)

var (
	stressOps     int
	stressSeed    int64
	stressMaxSize uint64
	stressEmit    string
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVar(&stressOps, "ops", 10000, "Number of operations to generate")
	cmd.Flags().Int64Var(&stressSeed, "seed", 0, "Random seed (default: current time)")
	cmd.Flags().Uint64Var(&stressMaxSize, "max-size", 256<<10, "Largest request size in bytes")
	cmd.Flags().StringVar(&stressEmit, "emit", "", "Also write the generated trace to this file")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run a random workload with invariant checks",
		Long: `The stress command generates a random allocation workload, replays it
with heap invariants checked after every operation and payload contents
checked before every resize and free, and reports the statistics.

A failing run can be reproduced with the printed seed, or saved with --emit
and replayed.

Example:
  heapctl stress
  heapctl stress --ops 100000 --seed 42
  heapctl stress --max-size 1048576 --emit failing.trace`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress(cmd.Context())
		},
	}
	return cmd
}

func runStress(ctx context.Context) error {
	seed := stressSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if stressOps <= 0 {
		return fmt.Errorf("--ops must be positive, got %d", stressOps)
	}

	ops := trace.Generate(trace.GenerateOptions{
		Ops:     stressOps,
		Seed:    seed,
		MaxSize: uintptr(stressMaxSize),
	})

	if stressEmit != "" {
		f, err := os.Create(stressEmit)
		if err != nil {
			return fmt.Errorf("failed to create trace file: %w", err)
		}
		if err := trace.Write(f, ops); err != nil {
			f.Close()
			return fmt.Errorf("failed to write trace: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write trace: %w", err)
		}
	}

	a := newAllocator()
	defer a.Reset()

	res, err := trace.Replay(ctx, a, ops, &trace.Options{VerifyEach: true})
	if err != nil {
		return fmt.Errorf("seed %d: failed after %d operations: %w", seed, res.Ops, err)
	}
	return printReport(newReport(fmt.Sprintf("stress seed %d", seed), res, a, false))
}
