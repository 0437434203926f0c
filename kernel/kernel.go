package kernel

import (
	"fmt"

	"miniker/fdtable"
	"miniker/proc"
	"miniker/sched"
	"miniker/syscalls"
	"miniker/thread"
)

// Kernel bundles one scheduler instance with the backing Filesystem,
// Console, and Loader that syscalls.Dispatcher needs, plus the lifecycle
// hook chain. cmd's boot command and every kernel/*_test.go scenario build
// one of these instead of reaching for sched/fdtable's package-level state
// directly.
type Kernel struct {
	Policy     sched.Policy
	FS         *MemFS
	Console    Console
	Dispatcher *syscalls.Dispatcher
	Loader     *Loader
	Hooks      *Chain
}

// Console is satisfied by both TermConsole and NullConsole.
type Console interface {
	Write(data []byte) int
	Read(buf []byte) int
}

// New constructs a Kernel, creates the scheduler singleton, and wires
// fdtable's exit hook plus the lifecycle Chain into the scheduler's
// onThreadCreated/onThreadExit callbacks.
func New(policy sched.Policy, console Console) *Kernel {
	s := sched.New(policy)

	fs := NewMemFS()
	hooks := NewChain()
	loader := NewLoader()

	k := &Kernel{
		Policy:  policy,
		FS:      fs,
		Console: console,
		Loader:  loader,
		Hooks:   hooks,
	}
	k.Dispatcher = &syscalls.Dispatcher{FS: fs, Console: console, Loader: loader}
	loader.Dispatcher = k.Dispatcher

	s.OnThreadCreated(func(t *thread.Thread) {
		hooks.Run(OnCreate, t)
	})
	s.OnThreadExit(func(t *thread.Thread) {
		fdtable.ExitHook(t)
		hooks.Run(OnExit, t)
	})

	return k
}

// RunDemo execs the named program as the kernel's one root process and
// waits for it to finish, returning its exit status.
func (k *Kernel) RunDemo(name string) (int, error) {
	tid, err := k.Loader.ExecByName(name)
	if err != nil {
		return 0, err
	}
	return proc.Wait(tid), nil
}

// Boot loads cfg, builds a Kernel, runs the configured demo to completion,
// and returns a human-readable summary line. It is the entry point cmd's
// "boot" command calls.
func Boot(cfg Config) (string, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return "", err
	}
	console, err := NewTermConsole()
	if err != nil {
		return "", fmt.Errorf("kernel: console: %w", err)
	}
	defer console.Restore()

	k := New(policy, console)
	status, err := k.RunDemo(cfg.Demo)
	if err != nil {
		return "", fmt.Errorf("kernel: run demo %s: %w", cfg.Demo, err)
	}
	return fmt.Sprintf("demo %q exited with status %d", cfg.Demo, status), nil
}

// Snapshot returns the current scheduler's thread table, for the "ps"
// command and for tests asserting on priority/nice/recent_cpu state.
func Snapshot() []sched.ThreadSnapshot {
	return sched.Snapshot()
}
