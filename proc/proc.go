// Package proc implements the user-process lifecycle layered on top of a
// thread: exec, wait, and exit, along with the per-parent child-process
// bookkeeping that makes wait's one-shot, children-only, no-double-wait
// semantics work (Section 5).
package proc

import (
	"container/list"

	kerrors "miniker/errors"
	"miniker/ksync"
	"miniker/logging"
	"miniker/sched"
	"miniker/thread"
)

// ChildRecord is what a parent keeps about one child it created, surviving
// the child's own Thread being torn down so Wait can still answer after
// the child has exited. Equivalent to the wait_status struct PintOS
// project 2 write-ups describe.
type ChildRecord struct {
	Tid        int
	ExitStatus int
	Exited     bool
	Waited     bool
	done       *ksync.Semaphore // posted once by the child's Exit
	elem       *list.Element
}

// Loader loads an executable image and produces the function that plays
// the role of that program's code: in this simulation a user "program" is
// a Go function that drives syscalls the same way real user code would
// trap into them. The kernel package supplies the concrete implementation
// backed by its Filesystem interface; proc only needs to know whether the
// load succeeded and, if so, what to run.
type Loader interface {
	Load(path string, args []string) (addrSpace any, run func(self *thread.Thread), ok bool)
}

// Exec creates a new thread running the named executable as a child of
// the calling thread, blocking until the child has either finished
// loading or failed to. Returns the new tid, or an error if the load
// failed. Equivalent to process_execute's synchronous load handshake.
func Exec(loader Loader, path string, args []string, priority int) (int, error) {
	parent := sched.CurrentThread()
	loaded := ksync.NewSemaphore(0)
	var ok bool

	child := sched.Spawn(path, priority, func(self *thread.Thread) {
		// The child's ChildRecord must exist before the child can
		// possibly reach Exit, or a fast-exiting child would post to a
		// record that is never created and a later Wait would block
		// forever. Registering it as the first action, keyed off self
		// rather than a *thread.Thread this closure doesn't have yet,
		// closes that race.
		self.Parent = parent
		addRecord(parent, self.Tid)

		addrSpace, run, loadOK := loader.Load(path, args)
		self.PageDir = addrSpace
		ok = loadOK
		loaded.Up()
		if !loadOK {
			Exit(-1)
			return
		}
		run(self)
	})
	loaded.Down()

	if !ok {
		logging.Debug("exec load failed", "path", path, "parent", parent.Tid)
		removeRecord(parent, child.Tid)
		return -1, kerrors.Wrap(kerrors.ErrExecFailed, kerrors.ErrInternal, "proc.Exec")
	}

	logging.Debug("exec loaded", "path", path, "tid", child.Tid, "parent", parent.Tid)
	return child.Tid, nil
}

func addRecord(parent *thread.Thread, childTid int) *ChildRecord {
	if parent.ProcessChildren == nil {
		parent.ProcessChildren = list.New()
	}
	rec := &ChildRecord{Tid: childTid, ExitStatus: -1, done: ksync.NewSemaphore(0)}
	rec.elem = parent.ProcessChildren.PushBack(rec)
	return rec
}

func removeRecord(parent *thread.Thread, tid int) {
	rec := findRecord(parent, tid)
	if rec == nil {
		return
	}
	parent.ProcessChildren.Remove(rec.elem)
}

func findRecord(parent *thread.Thread, tid int) *ChildRecord {
	if parent.ProcessChildren == nil {
		return nil
	}
	for e := parent.ProcessChildren.Front(); e != nil; e = e.Next() {
		if r := e.Value.(*ChildRecord); r.Tid == tid {
			return r
		}
	}
	return nil
}

// Wait blocks until the child tid exits (or returns immediately if it
// already has) and returns its exit status. Returns -1 without blocking
// if tid does not name a direct child of the calling thread, or if it has
// already been waited on (Section 5, edge cases).
func Wait(tid int) int {
	parent := sched.CurrentThread()
	rec := findRecord(parent, tid)
	if rec == nil || rec.Waited {
		logging.Debug("wait rejected: not a waitable child", "parent", parent.Tid, "tid", tid)
		return -1
	}
	rec.Waited = true
	if !rec.Exited {
		logging.Debug("wait blocking on child", "parent", parent.Tid, "tid", tid)
		rec.done.Down()
	}
	return rec.ExitStatus
}

// Exit records status as the calling thread's exit status, wakes the
// parent's pending Wait if there is one, discards the calling thread's
// own child records (a child that exits later finds no record and skips
// the signal), and tears the thread down. Exit never returns (see
// sched.Exit).
func Exit(status int) {
	cur := sched.CurrentThread()
	logging.Debug("process exit", "tid", cur.Tid, "status", status)
	if cur.Parent != nil {
		if rec := findRecord(cur.Parent, cur.Tid); rec != nil {
			rec.ExitStatus = status
			rec.Exited = true
			rec.done.Up()
		}
	}
	if cur.ProcessChildren != nil {
		cur.ProcessChildren.Init()
	}
	sched.Exit(status)
}
