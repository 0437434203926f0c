// Package kernel wires the thread, ksync, sched, proc, fdtable, and
// syscalls packages into a bootable simulation: a boot configuration, a
// set of fake Filesystem/AddressSpace/Console backends, a registry of
// demo programs a Loader can run, and the Boot entry point cmd uses.
package kernel

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"miniker/sched"
)

// Config is the boot configuration, loaded from a TOML file: the handful
// of knobs this kernel's boot loop needs (scheduler policy, default demo,
// log level and format).
type Config struct {
	// Scheduler selects "priority" or "mlfq" (Section 4).
	Scheduler string `toml:"scheduler"`
	// Demo names the program Boot should run (Section 8's scenarios).
	Demo string `toml:"demo"`
	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `toml:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `toml:"log_format"`
}

// DefaultConfig returns the configuration Boot uses when no config file is
// given.
func DefaultConfig() Config {
	return Config{
		Scheduler: "priority",
		Demo:      "stdout",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// LoadConfig parses a TOML boot configuration file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("kernel: load config %s: %w", path, err)
	}
	return cfg, nil
}

// Policy translates the configured scheduler name into a sched.Policy.
func (c Config) Policy() (sched.Policy, error) {
	switch c.Scheduler {
	case "", "priority":
		return sched.PolicyPriority, nil
	case "mlfq":
		return sched.PolicyMLFQ, nil
	default:
		return 0, fmt.Errorf("kernel: unknown scheduler %q", c.Scheduler)
	}
}
