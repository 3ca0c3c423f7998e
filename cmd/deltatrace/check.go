package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <trace-file>",
		Short: "Replay a trace file, verifying heap consistency after every operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args[0])
		},
	}
}

// runCheck is run's --verify mode forced on, with a non-zero exit on the
// first invariant violation instead of a summary count: it turns the
// library's diagnostics into a pass/fail CI-style gate.
func runCheck(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ops, err := parseTrace(f)
	if err != nil {
		return err
	}

	result, err := replay(ops, true)
	if err != nil {
		return err
	}
	if len(result.violations) > 0 {
		return fmt.Errorf("%d checker violations found across %d operations, first: %w",
			len(result.violations), result.ops, result.violations[0])
	}

	fmt.Printf("ok: %d operations, heap consistent\n", result.ops)
	return nil
}
