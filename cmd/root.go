// Package cmd implements the CLI commands for the miniker kernel
// simulation.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"miniker/logging"
)

// Version information set at build time.
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// Global flags.
var (
	globalLog       string
	globalLogFormat string
	globalDebug     bool
)

// rootCmd is the base command for miniker.
var rootCmd = &cobra.Command{
	Use:   "miniker",
	Short: "A teaching kernel scheduler and syscall simulation",
	Long: `miniker simulates a small, single-CPU teaching kernel: strict-priority
and MLFQ thread scheduling with donation, a user-process syscall layer, and
a handful of runnable demo scenarios.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalLog, "log", "", "set the log file path")
	rootCmd.PersistentFlags().StringVar(&globalLogFormat, "log-format", "text", "set the format for log output (text or json)")
	rootCmd.PersistentFlags().BoolVar(&globalDebug, "debug", false, "enable debug logging")
}

func setupLogging() {
	logOutput := os.Stderr
	if globalLog != "" {
		f, err := os.OpenFile(globalLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err == nil {
			logOutput = f
		}
	}

	logLevel := slog.LevelInfo
	if globalDebug {
		logLevel = slog.LevelDebug
	}

	if globalLogFormat == "json" || globalLog != "" {
		logger := logging.NewLogger(logging.Config{
			Level:  logLevel,
			Format: globalLogFormat,
			Output: logOutput,
		})
		logging.SetDefault(logger)
	}
}
