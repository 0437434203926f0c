package kernel

import (
	"fmt"

	kerrors "miniker/errors"
	"miniker/ksync"
	"miniker/proc"
	"miniker/sched"
	"miniker/syscalls"
	"miniker/thread"
)

// program is a registered demo body: given the Loader (so it can reach the
// shared Dispatcher) and the thread running it, do the scenario's work.
type program func(self *thread.Thread, l *Loader)

// Loader implements proc.Loader by looking up a registered demo program by
// name. Every demo shares one MemAddrSpace per thread, sized generously
// enough for the string arguments and small buffers these scenarios pass
// to syscalls.
type Loader struct {
	Dispatcher *syscalls.Dispatcher
	programs   map[string]program
}

// NewLoader creates a Loader with the standard demo registry installed
// (Section 8's scenario list).
func NewLoader() *Loader {
	l := &Loader{programs: make(map[string]program)}
	l.Register("stdout", demoStdout)
	l.Register("fdalloc", demoFDAlloc)
	l.Register("invalidptr", demoInvalidPointer)
	l.Register("execwait", demoExecWait)
	l.Register("child_leaf", demoChildLeaf)
	l.Register("donation", demoDonation)
	l.Register("mlfqs", demoMLFQS)
	return l
}

// Register installs (or replaces) the program run under name.
func (l *Loader) Register(name string, p program) {
	l.programs[name] = p
}

// Load implements proc.Loader.
func (l *Loader) Load(path string, args []string) (any, func(self *thread.Thread), bool) {
	p, ok := l.programs[path]
	if !ok {
		return nil, nil, false
	}
	as := NewMemAddrSpace(4096)
	run := func(self *thread.Thread) {
		self.PageDir = as
		p(self, l)
	}
	return as, run, true
}

// ExecByName execs the named registered program as a fresh process.
func (l *Loader) ExecByName(name string) (int, error) {
	return proc.Exec(l, name, nil, thread.PriDefault)
}

// --- demo scenarios (Section 8) ---

// demoStdout writes a line to fd 1 through the real syscall path.
func demoStdout(self *thread.Thread, l *Loader) {
	as := self.PageDir.(*MemAddrSpace)
	as.PutString(0, "hello from miniker\n")
	l.Dispatcher.Dispatch(self, as, syscalls.TrapFrame{
		Number: syscalls.SysWrite, Arg0: uintptr(1), Arg1: 0, Arg2: 19,
	})
	proc.Exit(0)
}

// demoFDAlloc exercises create/open/close and the no-reuse fd allocation
// rule: closing an fd and opening again must hand out a higher fd, never
// a previously closed one.
func demoFDAlloc(self *thread.Thread, l *Loader) {
	as := self.PageDir.(*MemAddrSpace)
	as.PutString(0, "scratch.txt")
	d := l.Dispatcher

	d.Dispatch(self, as, syscalls.TrapFrame{Number: syscalls.SysCreate, Arg0: 0, Arg1: 64})
	fd1 := d.Dispatch(self, as, syscalls.TrapFrame{Number: syscalls.SysOpen, Arg0: 0})
	fd2 := d.Dispatch(self, as, syscalls.TrapFrame{Number: syscalls.SysOpen, Arg0: 0})
	d.Dispatch(self, as, syscalls.TrapFrame{Number: syscalls.SysClose, Arg0: uintptr(fd1)})
	fd3 := d.Dispatch(self, as, syscalls.TrapFrame{Number: syscalls.SysOpen, Arg0: 0})

	status := 0
	if fd3 != fd2+1 {
		status = -1 // the no-reuse invariant broke
	}
	d.Dispatch(self, as, syscalls.TrapFrame{Number: syscalls.SysClose, Arg0: uintptr(fd2)})
	d.Dispatch(self, as, syscalls.TrapFrame{Number: syscalls.SysClose, Arg0: uintptr(fd3)})
	proc.Exit(status)
}

// demoInvalidPointer passes a wildly out-of-range buffer pointer to write,
// which must kill the calling thread with status -1 rather than touching
// memory outside its address space. proc.Exit(-1) runs inside the
// Dispatch call, which therefore never returns to this body.
func demoInvalidPointer(self *thread.Thread, l *Loader) {
	as := self.PageDir.(*MemAddrSpace)
	l.Dispatcher.Dispatch(self, as, syscalls.TrapFrame{
		Number: syscalls.SysWrite, Arg0: uintptr(1), Arg1: 1 << 20, Arg2: 8,
	})
}

// demoChildLeaf is the target of demoExecWait's exec call: a trivial
// program that writes one line and exits with a distinguishing status.
func demoChildLeaf(self *thread.Thread, l *Loader) {
	as := self.PageDir.(*MemAddrSpace)
	as.PutString(0, "child running\n")
	l.Dispatcher.Dispatch(self, as, syscalls.TrapFrame{
		Number: syscalls.SysWrite, Arg0: uintptr(1), Arg1: 0, Arg2: 14,
	})
	proc.Exit(21)
}

// demoExecWait execs demoChildLeaf and waits for it, exiting with the
// child's status so the caller can see the round trip worked.
func demoExecWait(self *thread.Thread, l *Loader) {
	as := self.PageDir.(*MemAddrSpace)
	as.PutString(0, "child_leaf")
	tid := l.Dispatcher.Dispatch(self, as, syscalls.TrapFrame{Number: syscalls.SysExec, Arg0: 0})
	status := l.Dispatcher.Dispatch(self, as, syscalls.TrapFrame{Number: syscalls.SysWait, Arg0: uintptr(tid)})
	proc.Exit(status)
}

// demoDonation reproduces the classic three-thread donation chain: a low
// priority thread holds a lock a high priority thread then blocks on,
// and must run at the high thread's priority until it releases the lock
// (Section 4.C).
func demoDonation(self *thread.Thread, l *Loader) {
	lock := ksync.NewLock()
	acquired := ksync.NewSemaphore(0)
	gate := ksync.NewSemaphore(0)
	holderDone := ksync.NewSemaphore(0)

	sched.Spawn("low", thread.PriDefault-10, func(t *thread.Thread) {
		lock.Acquire()
		acquired.Up()
		gate.Down()
		lock.Release()
		holderDone.Up()
	})
	// Block until low actually holds the lock, rather than racing it with
	// a bare Yield that a strict-priority scheduler would just hand right
	// back to this (higher-priority) thread.
	acquired.Down()

	sched.Spawn("high", thread.PriDefault+10, func(t *thread.Thread) {
		gate.Up()
		lock.Acquire() // donates to low, which is still holding lock
		lock.Release()
	})

	holderDone.Down()
	kerrors.Assert(!lock.IsHeldByCurrent(), "kernel.demoDonation", "root never holds the lock")
	proc.Exit(0)
}

// demoMLFQS runs several nice-differentiated threads under the MLFQ
// policy long enough for priorities to separate by recent_cpu penalty,
// then snapshots the thread table so a caller can see every thread
// eventually ran rather than the highest-nice thread starving (Section
// 4.D).
func demoMLFQS(self *thread.Thread, l *Loader) {
	ran := make(map[int]bool)
	const n = 3
	for i := 0; i < n; i++ {
		i := i
		t := sched.Spawn(fmt.Sprintf("mlfq-%d", i), thread.PriDefault, func(t *thread.Thread) {
			sched.SetNice(t, i*10-10)
			for tick := 0; tick < 50; tick++ {
				ran[t.Tid] = true
				sched.Yield()
			}
		})
		_ = t
	}
	for tick := 0; tick < 200; tick++ {
		sched.Tick()
		sched.Yield()
	}
	status := 0
	if len(ran) != n {
		status = -1 // a thread starved outright
	}
	proc.Exit(status)
}
