package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tracelens/internal/prof"
)

var profiling *prof.Session

// startProfiling inspects persistent profiling flags and enables the
// corresponding profilers.
func startProfiling(cmd *cobra.Command) error {
	root := cmd.Root()

	cpuProfile, err := root.PersistentFlags().GetString("cpu-profile")
	if err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memProfile, err := root.PersistentFlags().GetString("mem-profile")
	if err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	tracePath, err := root.PersistentFlags().GetString("runtime-trace")
	if err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}

	opts := prof.Options{CPUProfile: cpuProfile, MemProfile: memProfile, RuntimeTrace: tracePath}
	if !opts.Enabled() {
		return nil
	}
	s, err := prof.Start(opts)
	if err != nil {
		return err
	}
	profiling = s
	return nil
}

// stopProfiling flushes any running profiles. Safe to call multiple times.
func stopProfiling() {
	if err := profiling.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
}
