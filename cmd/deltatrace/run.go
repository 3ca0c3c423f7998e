package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var runVerify bool

func init() {
	cmd := newRunCmd()
	cmd.Flags().BoolVar(&runVerify, "verify", false, "run the consistency checker after every operation")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <trace-file>",
		Short: "Replay a trace file and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(args[0])
		},
	}
}

func runRun(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ops, err := parseTrace(f)
	if err != nil {
		return err
	}

	result, err := replay(ops, runVerify)
	if err != nil {
		return err
	}

	fmt.Printf("replayed %d operations, %d checker violations\n", result.ops, len(result.violations))
	for _, v := range result.violations {
		fmt.Println("  -", v)
	}
	return nil
}
