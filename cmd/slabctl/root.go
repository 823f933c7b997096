package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/slabkit/internal/logger"
	"github.com/joshuapare/slabkit/slab"
	"github.com/joshuapare/slabkit/slab/printer"
)

var (
	// Global flags
	verbose  bool
	quiet    bool
	jsonOut  bool
	debug    bool
	logJSON  bool
	logDir   string
	capacity int
)

var rootCmd = &cobra.Command{
	Use:   "slabctl",
	Short: "Exercise and inspect the slabkit allocator",
	Long: `slabctl drives a slabkit heap with synthetic workloads and reports
per-node usage and heap statistics. It is useful for sizing the slot
capacity and for shaking out allocator regressions under concurrency.`,
	Version: "0.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
	SilenceUsage: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Trace every allocation and free to the log")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit log records as JSON")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Write logs to daily files in this directory")
	rootCmd.PersistentFlags().
		IntVar(&capacity, "capacity", slab.DefaultCapacity, "Object slots per memory region")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initLogging enables the shared logger when --verbose or --debug is set.
func initLogging() error {
	opts := logger.Options{
		Enabled: verbose || debug,
		Level:   slog.LevelInfo,
		JSON:    logJSON,
		LogDir:  logDir,
	}
	if debug {
		opts.Level = slog.LevelDebug
	}
	if logDir == "" {
		opts.Output = os.Stderr
	}
	return logger.Init(opts)
}

// newHeap builds a heap from the global flags. Faults are returned through
// onFault when it is non-nil; otherwise they abort the process.
func newHeap(onFault slab.FaultHandler) (*slab.Heap, error) {
	cfg := slab.DefaultConfig()
	cfg.Capacity = capacity
	if onFault != nil {
		cfg.OnFault = onFault
	}
	return slab.New(cfg)
}

// newPrinter returns a printer for stdout honoring --json.
func newPrinter() *printer.Printer {
	opts := printer.DefaultOptions()
	if jsonOut {
		opts.Format = printer.FormatJSON
	}
	return printer.New(os.Stdout, opts)
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
