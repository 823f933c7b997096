package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	usageSizes     []int
	usageCount     int
	usageFreeEvery int
	usageStats     bool
)

func init() {
	cmd := newUsageCmd()
	cmd.Flags().IntSliceVar(&usageSizes, "sizes", []int{16, 32, 64, 128, 256, 4096}, "Object sizes to allocate")
	cmd.Flags().IntVar(&usageCount, "count", 600, "Objects to allocate per size")
	cmd.Flags().IntVar(&usageFreeEvery, "free-every", 3, "Free every Nth object afterwards (0 keeps all)")
	cmd.Flags().BoolVar(&usageStats, "stats", false, "Also print heap statistics")
	rootCmd.AddCommand(cmd)
}

func newUsageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Run a synthetic workload and print per-region usage",
		Long: `The usage command allocates a fixed number of objects for each size,
frees a fraction of them, and prints one row per memory region in chain
order: object size, live objects, slots, capacity and available bytes.

Example:
  slabctl usage
  slabctl usage --sizes 24,48 --count 2000 --free-every 2
  slabctl usage --capacity 1024 --stats --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsage(args)
		},
	}
	return cmd
}

func runUsage(_ []string) error {
	if usageCount < 0 {
		return fmt.Errorf("count must not be negative, got %d", usageCount)
	}
	for _, size := range usageSizes {
		if size < 0 {
			return fmt.Errorf("object size must not be negative, got %d", size)
		}
	}

	h, err := newHeap(nil)
	if err != nil {
		return err
	}

	if !jsonOut {
		printVerbose("Capacity: %d slots per region\n", h.Capacity())
	}
	res, err := churn(h, usageSizes, usageCount, usageFreeEvery)
	if err != nil {
		return err
	}
	if !jsonOut {
		printInfo("Allocated %d objects, freed %d\n\n", res.Allocated, res.Freed)
	}

	p := newPrinter()
	if usageStats {
		return p.Report(h.Snapshot(), h.Stats())
	}
	return p.Usage(h.Snapshot())
}
