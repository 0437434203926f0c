package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"miniker/kernel"
)

var bootCmd = &cobra.Command{
	Use:   "boot",
	Short: "Boot the kernel and run a demo scenario",
	Long:  `Boot constructs a scheduler and syscall dispatcher and runs one demo program to completion.`,
	Args:  cobra.NoArgs,
	RunE:  runBoot,
}

var (
	bootConfigPath string
	bootScheduler  string
	bootDemo       string
)

func init() {
	rootCmd.AddCommand(bootCmd)

	bootCmd.Flags().StringVarP(&bootConfigPath, "config", "c", "", "path to a TOML boot configuration file")
	bootCmd.Flags().StringVar(&bootScheduler, "scheduler", "", "override the configured scheduler (priority or mlfq)")
	bootCmd.Flags().StringVar(&bootDemo, "demo", "", "override the configured demo scenario")
}

func runBoot(cmd *cobra.Command, args []string) error {
	cfg := kernel.DefaultConfig()
	if bootConfigPath != "" {
		loaded, err := kernel.LoadConfig(bootConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if bootScheduler != "" {
		cfg.Scheduler = bootScheduler
	}
	if bootDemo != "" {
		cfg.Demo = bootDemo
	}

	summary, err := kernel.Boot(cfg)
	if err != nil {
		return fmt.Errorf("boot: %w", err)
	}
	fmt.Println(summary)
	return nil
}
