package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"miniker/kernel"
	"miniker/ksync"
	"miniker/sched"
	"miniker/thread"
)

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "Spawn a handful of threads and print the scheduler's thread table",
	Long:  `ps boots a scheduler, spawns a few threads at different priorities, and prints a snapshot of the thread table.`,
	Args:  cobra.NoArgs,
	RunE:  runPs,
}

var psMLFQ bool

func init() {
	rootCmd.AddCommand(psCmd)
	psCmd.Flags().BoolVar(&psMLFQ, "mlfq", false, "snapshot under the MLFQ scheduler instead of strict priority")
}

func runPs(cmd *cobra.Command, args []string) error {
	policy := sched.PolicyPriority
	if psMLFQ {
		policy = sched.PolicyMLFQ
	}
	kernel.New(policy, &kernel.NullConsole{})

	park := ksync.NewSemaphore(0)
	for i, pri := range []int{thread.PriDefault - 5, thread.PriDefault, thread.PriDefault + 5} {
		name := fmt.Sprintf("worker-%d", i)
		sched.Spawn(name, pri, func(t *thread.Thread) {
			park.Down()
		})
	}
	sched.Yield() // workers at or above main's priority reach their park point; the lowest stays ready

	return outputThreadTable(kernel.Snapshot())
}

func outputThreadTable(snap []sched.ThreadSnapshot) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "TID\tNAME\tSTATUS\tBASE\tEFFECTIVE\tNICE\tRECENT_CPU\tDONORS")

	for _, s := range snap {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%s\t%d\n",
			s.Tid, s.Name, s.Status, s.BasePriority, s.EffectivePriority, s.Nice, s.RecentCpu, s.NumDonors)
	}

	return w.Flush()
}
