// Command deltatrace replays allocation traces against a deltaheap.Heap: a
// harness that issues alloc/free/realloc/calloc requests from a trace file
// and reports what happened, useful for exercising the allocator without
// embedding it in a larger program.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

var (
	logLevel  string
	logJSON   bool
	heapBytes int
)

var rootCmd = &cobra.Command{
	Use:   "deltatrace",
	Short: "Replay allocation traces against a deltaheap.Heap",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON instead of text")
	rootCmd.PersistentFlags().IntVar(&heapBytes, "heap-size", 64<<20, "backing buffer size in bytes for the trace heap")
}

func initLogger() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}

	opts := &slog.HandlerOptions{Level: level}
	if logJSON {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, opts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
