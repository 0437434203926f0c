// miniker is a small, single-CPU teaching kernel simulation: a thread
// scheduler with priority donation and a 64-level MLFQ, a user-process
// syscall layer, and a handful of runnable demo scenarios.
//
// Commands:
//
//	boot    - run the configured demo scenario to completion
//	demo    - run one named demo scenario
//	ps      - snapshot the scheduler's thread table
//	version - print version information
package main

import (
	"fmt"
	"os"

	"miniker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "miniker:", err)
		os.Exit(1)
	}
}
