package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"miniker/kernel"
	"miniker/sched"
)

var demoScenarios = []string{
	"stdout", "fdalloc", "invalidptr", "execwait", "donation", "mlfqs",
}

var demoCmd = &cobra.Command{
	Use:   "demo <scenario>",
	Short: "Run one named demo scenario and print its result",
	Long: fmt.Sprintf("Run one named demo scenario and print its result. Available scenarios: %v",
		demoScenarios),
	Args: cobra.ExactArgs(1),
	RunE: runDemo,
}

var demoMLFQ bool

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().BoolVar(&demoMLFQ, "mlfq", false, "run under the MLFQ scheduler instead of strict priority")
}

func runDemo(cmd *cobra.Command, args []string) error {
	name := args[0]
	policy := sched.PolicyPriority
	if demoMLFQ || name == "mlfqs" {
		policy = sched.PolicyMLFQ
	}

	console, err := kernel.NewTermConsole()
	if err != nil {
		return fmt.Errorf("console: %w", err)
	}
	defer console.Restore()

	k := kernel.New(policy, console)
	status, err := k.RunDemo(name)
	if err != nil {
		return fmt.Errorf("demo %s: %w", name, err)
	}
	fmt.Printf("demo %q exited with status %d\n", name, status)
	return nil
}
