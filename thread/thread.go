// Package thread defines the thread control block (TCB): the per-thread
// state record shared by the scheduler, the synchronization primitives, and
// the process layer.
//
// PintOS-family kernels allocate one TCB per page and find the running
// thread by rounding the stack pointer down to the page boundary. That trick
// is x86-specific and tied to hand-laid-out stacks; Section 9's design notes
// call for a portable replacement "using a CPU-local pointer... and drop the
// page-alignment requirement." Since this kernel targets a single CPU, the
// CPU-local pointer is simply the scheduler's current *Thread field, and
// each thread's "stack" is the goroutine executing its body, parked on a
// channel between scheduling quantums. The magic-canary check is kept
// because it is still useful as a cheap not-a-thread / corrupted-pointer
// guard independent of the page trick.
package thread

import (
	"container/list"

	"miniker/fixed"
)

// Priority band, Section 6.
const (
	PriMin     = 0
	PriDefault = 31
	PriMax     = 63
)

// Nice band, Section 6.
const (
	NiceMin     = -20
	NiceMax     = 20
	NiceDefault = 0
)

// Magic is the stack-overflow canary value stamped into every TCB.
const Magic uint32 = 0xcd6abf4b

// Status is the scheduling state of a thread (Section 3, invariant 1-3).
type Status int

const (
	Running Status = iota
	Ready
	Blocked
	Dying
)

func (s Status) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Ready:
		return "READY"
	case Blocked:
		return "BLOCKED"
	case Dying:
		return "DYING"
	default:
		return "UNKNOWN"
	}
}

// Thread is the TCB. Fields are only ever mutated while the owning
// scheduler's critical-section lock is held; see ksync and sched.
type Thread struct {
	Tid   int
	Name  string
	Magic uint32

	Status Status

	BasePriority      int
	EffectivePriority int

	// Donors holds *Thread values currently donating priority to this
	// thread (Section 4.C). Nil until first donation.
	Donors *list.List

	// WaitLock is the lock this thread is blocked acquiring, or nil.
	// Typed as any (rather than *ksync.Lock) so that this package does not
	// import ksync, which itself needs *Thread: ksync owns the only code
	// that type-asserts this field.
	WaitLock any

	Nice      int
	RecentCpu fixed.Fixed

	// Process fields, populated only for user threads (Section 3).
	Parent *Thread
	// ProcessChildren holds *proc.ChildRecord values, opaque to this
	// package for the same reason WaitLock is opaque.
	ProcessChildren *list.List
	// ChildLock is the child_process_lock semaphore (any, see WaitLock).
	ChildLock      any
	TidWait        int
	ExecutableFile any // external.File kept open for deny-write.
	NumFD          int
	// Files holds *fdtable.OpenFile values.
	Files      *list.List
	ExitStatus int
	PageDir    any // external.AddressSpace, nil for kernel-only threads.

	// allElem and readyElem are this thread's node handles in the
	// scheduler's all_list and in whichever ready structure (generic
	// ready_list or one of the 64 MLFQ buckets) currently holds it.
	// Exactly one of readyElem's containing list is non-nil at a time,
	// per invariant 2.
	allElem   *list.Element
	readyElem *list.Element
	readyList *list.List

	body   func(*Thread)
	resume chan struct{}

	// yieldRequested is set by the scheduler's timer tick to ask this
	// thread to call sched.CheckPreempt at its next checkpoint, standing
	// in for a hardware timer interrupt arriving mid-quantum.
	yieldRequested bool
}

// YieldRequested reports whether the scheduler has asked this thread to
// yield at its next checkpoint.
func (t *Thread) YieldRequested() bool { return t.yieldRequested }

// SetYieldRequested sets or clears the pending-yield flag.
func (t *Thread) SetYieldRequested(v bool) { t.yieldRequested = v }

// New allocates a TCB. priority is clamped to [PriMin, PriMax]; callers that
// need donation-aware clamping use sched.SetPriority after creation.
func New(tid int, name string, priority int) *Thread {
	if priority < PriMin {
		priority = PriMin
	}
	if priority > PriMax {
		priority = PriMax
	}
	return &Thread{
		Tid:               tid,
		Name:              name,
		Magic:             Magic,
		Status:            Ready,
		BasePriority:      priority,
		EffectivePriority: priority,
		Donors:            list.New(),
		ProcessChildren:   list.New(),
		Files:             list.New(),
		NumFD:             2,
		TidWait:           0,
		ExitStatus:        -1,
		resume:            make(chan struct{}, 1),
	}
}

// IsThread reports whether t is a live, uncorrupted TCB.
func IsThread(t *Thread) bool {
	return t != nil && t.Magic == Magic
}

// SetBody installs the function this thread will run once first scheduled.
// Must be called before the thread is handed to a scheduler.
func (t *Thread) SetBody(fn func(*Thread)) {
	t.body = fn
}

// Body returns the installed body function.
func (t *Thread) Body() func(*Thread) {
	return t.body
}

// ResumeChan returns the channel the scheduler signals to hand this thread the CPU,
// and the channel this thread parks on when it is not running. It is the
// Go-idiomatic stand-in for a low-level context-switch stub: parking a
// goroutine on a channel instead of saving/restoring registers.
func (t *Thread) ResumeChan() chan struct{} {
	return t.resume
}

// AllElem / SetAllElem track this thread's node in the scheduler's all_list.
func (t *Thread) AllElem() *list.Element     { return t.allElem }
func (t *Thread) SetAllElem(e *list.Element) { t.allElem = e }

// ReadyElem / SetReadyElem track this thread's node in whichever ready
// structure currently holds it. ReadyList / SetReadyList record which
// list that is, so the scheduler can remove t without having to infer
// the right bucket from a priority that may already have changed.
func (t *Thread) ReadyElem() *list.Element     { return t.readyElem }
func (t *Thread) SetReadyElem(e *list.Element) { t.readyElem = e }
func (t *Thread) ReadyList() *list.List        { return t.readyList }
func (t *Thread) SetReadyList(l *list.List)    { t.readyList = l }

// HasDonors reports whether any thread currently donates priority to t.
func (t *Thread) HasDonors() bool {
	return t.Donors != nil && t.Donors.Len() > 0
}
