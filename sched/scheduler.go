// Package sched implements the thread scheduler: a strict-priority ready
// queue, the 64-level multi-level feedback queue (MLFQ) alternative, and
// the priority-donation bookkeeping that ksync's Lock relies on.
//
// The scheduler models a single CPU. Exactly one thread's goroutine is
// ever unblocked at a time; every other thread is parked on its own
// resume channel (see thread.Thread.ResumeChan). schedule hands the CPU
// from the calling thread to the next one by sending on that channel and
// then, unless the caller is exiting, parking on its own channel until it
// is next resumed. A package-level mutex stands in for PintOS's
// intr_disable/intr_enable around the ready-queue and donation state.
package sched

import (
	"container/list"
	"runtime"
	"sync"

	kerrors "miniker/errors"
	"miniker/fixed"
	"miniker/ilist"
	"miniker/logging"
	"miniker/thread"
)

// Policy selects the scheduling discipline.
type Policy int

const (
	// PolicyPriority is strict-priority scheduling with donation.
	PolicyPriority Policy = iota
	// PolicyMLFQ is the 64-level multi-level feedback queue.
	PolicyMLFQ
)

// Scheduler owns all scheduling state for the simulated single CPU.
type Scheduler struct {
	mu sync.Mutex

	policy Policy

	allList *list.List // of *thread.Thread, creation order
	ready   *list.List // used only under PolicyPriority
	buckets [64]*list.List // used only under PolicyMLFQ, indexed by priority

	current *thread.Thread
	nextTid int

	ticks    int64
	loadAvg  fixed.Fixed
	sleeping *list.List // of *sleeper, timer wakeups

	onThreadCreated func(*thread.Thread)
	onThreadExit    func(*thread.Thread)
}

type sleeper struct {
	t      *thread.Thread
	wakeAt int64
}

var global *Scheduler

// New creates a scheduler and installs it as the package-level instance
// that ksync and the rest of the kernel address through the free
// functions below. The caller's goroutine becomes thread 0, "main",
// already Running: this mirrors PintOS's implicit kernel thread that
// calls thread_init before any other thread exists.
func New(policy Policy) *Scheduler {
	s := &Scheduler{
		policy:   policy,
		allList:  list.New(),
		ready:    list.New(),
		sleeping: list.New(),
	}
	for i := range s.buckets {
		s.buckets[i] = list.New()
	}
	main := thread.New(0, "main", thread.PriDefault)
	main.Status = thread.Running
	main.SetAllElem(s.allList.PushBack(main))
	s.current = main
	global = s
	return s
}

// OnThreadCreated registers a hook invoked synchronously after a new
// thread is fully constructed and placed on the ready queue. Used by
// kernel to run its OnCreate lifecycle hooks without sched importing
// kernel.
func (s *Scheduler) OnThreadCreated(fn func(*thread.Thread)) { s.onThreadCreated = fn }

// OnThreadExit registers a hook invoked just before an exiting thread's
// goroutine ends. Used by fdtable to close the thread's open files.
func (s *Scheduler) OnThreadExit(fn func(*thread.Thread)) { s.onThreadExit = fn }

func byEffectivePriorityDesc(a, b any) bool {
	return a.(*thread.Thread).EffectivePriority > b.(*thread.Thread).EffectivePriority
}

// readyListFor returns the list a thread of the given priority belongs in
// under the active policy.
func (s *Scheduler) readyListFor(priority int) *list.List {
	if s.policy == PolicyMLFQ {
		return s.buckets[priority]
	}
	return s.ready
}

func (s *Scheduler) enqueueReady(t *thread.Thread) {
	t.Status = thread.Ready
	l := s.readyListFor(t.EffectivePriority)
	t.SetReadyList(l)
	if s.policy == PolicyMLFQ {
		t.SetReadyElem(l.PushBack(t))
	} else {
		t.SetReadyElem(ilist.InsertOrdered(l, t, byEffectivePriorityDesc))
	}
}

func (s *Scheduler) dequeue(t *thread.Thread) {
	if e := t.ReadyElem(); e != nil {
		if l := t.ReadyList(); l != nil {
			l.Remove(e)
		}
		t.SetReadyElem(nil)
		t.SetReadyList(nil)
	}
}

// Spawn creates a new thread bound to body and places it on the ready
// queue. body runs on its own goroutine, parked until the scheduler first
// resumes it.
func Spawn(name string, priority int, body func(*thread.Thread)) *thread.Thread {
	s := global
	s.mu.Lock()
	s.nextTid++
	tid := s.nextTid
	t := thread.New(tid, name, priority)
	t.Nice = thread.NiceDefault
	t.SetAllElem(s.allList.PushBack(t))
	t.SetBody(body)
	s.enqueueReady(t)
	hook := s.onThreadCreated
	s.mu.Unlock()

	go func() {
		<-t.ResumeChan()
		t.Body()(t)
		// A body that already called Exit itself (e.g. to report a
		// non-zero status) leaves the thread Dying; only a body that
		// simply returns gets the default successful exit.
		if t.Status != thread.Dying {
			Exit(0)
		}
	}()

	if hook != nil {
		hook(t)
	}
	YieldIfOutranked(t)
	return t
}

// pickNext chooses the highest-priority ready thread, or nil if none is
// ready. Assumes mu is held.
func (s *Scheduler) pickNext() *thread.Thread {
	if s.policy == PolicyMLFQ {
		for p := thread.PriMax; p >= thread.PriMin; p-- {
			if s.buckets[p].Len() > 0 {
				return s.buckets[p].Front().Value.(*thread.Thread)
			}
		}
		return nil
	}
	e := ilist.Max(s.ready, func(a, b any) bool { return byEffectivePriorityDesc(b, a) })
	if e == nil {
		return nil
	}
	return e.Value.(*thread.Thread)
}

// schedule hands off the CPU from cur to the next ready thread, parking
// cur's goroutine unless cur is dying. If nothing is ready, cur simply
// keeps running (there is no idle thread in this model; the caller that
// put cur in a non-running state is responsible for that being
// momentary).
func (s *Scheduler) schedule(cur *thread.Thread) {
	next := s.pickNext()
	if next == nil {
		cur.Status = thread.Running
		return
	}
	s.dequeue(next)
	next.Status = thread.Running
	s.current = next
	if next == cur {
		return
	}
	wasDying := cur.Status == thread.Dying
	s.mu.Unlock()
	next.ResumeChan() <- struct{}{}
	if wasDying {
		return
	}
	<-cur.ResumeChan()
	s.mu.Lock()
}

// CurrentThread returns the thread currently occupying the CPU.
func CurrentThread() *thread.Thread {
	global.mu.Lock()
	defer global.mu.Unlock()
	return global.current
}

// Yield voluntarily gives up the CPU, re-entering the ready queue at the
// calling thread's current priority. Equivalent to thread_yield.
func Yield() {
	s := global
	s.mu.Lock()
	cur := s.current
	logging.Debug("thread yield", "tid", cur.Tid, "priority", cur.EffectivePriority)
	s.enqueueReady(cur)
	s.schedule(cur)
	s.mu.Unlock()
}

// Block removes t, which must be the calling thread, from the CPU and
// marks it Blocked. It does not return until some other code calls
// Unblock(t). Equivalent to thread_block.
func Block(t *thread.Thread) {
	s := global
	s.mu.Lock()
	kerrors.Assert(t == s.current, "sched.Block", "only the running thread may block itself")
	logging.Debug("thread block", "tid", t.Tid)
	t.Status = thread.Blocked
	s.schedule(t)
	s.mu.Unlock()
}

// Unblock moves a Blocked thread back onto the ready queue. It does not
// itself yield the CPU; callers that want donation-aware preemption call
// YieldIfOutranked afterward. Equivalent to thread_unblock.
func Unblock(t *thread.Thread) {
	s := global
	s.mu.Lock()
	logging.Debug("thread unblock", "tid", t.Tid)
	s.enqueueReady(t)
	s.mu.Unlock()
}

// YieldIfOutranked yields the CPU if woken, now ready, outranks the
// calling thread. Safe to call with woken == CurrentThread(), a no-op in
// that case.
func YieldIfOutranked(woken *thread.Thread) {
	s := global
	s.mu.Lock()
	cur := s.current
	outranked := woken != cur && woken.EffectivePriority > cur.EffectivePriority
	s.mu.Unlock()
	if outranked {
		Yield()
	}
}

// Exit tears down the calling thread: status Dying, exit hooks run, and
// the CPU is handed to the next ready thread. Exit never returns: once the
// CPU has been handed off, the calling goroutine ends. If no other thread
// is ready, there is nothing to hand off to and the caller keeps running.
func Exit(status int) {
	s := global
	cur := CurrentThread()
	cur.ExitStatus = status
	if s.onThreadExit != nil {
		s.onThreadExit(cur)
	}
	s.mu.Lock()
	cur.Status = thread.Dying
	if e := cur.AllElem(); e != nil {
		s.allList.Remove(e)
	}
	s.schedule(cur)
	if cur.Status == thread.Dying {
		runtime.Goexit()
	}
}

// CheckPreempt is the checkpoint a running thread calls periodically
// (e.g. in a busy loop or between syscalls) to honor a pending timer-tick
// yield request, standing in for hardware timer-interrupt preemption.
func CheckPreempt() {
	cur := CurrentThread()
	if cur.YieldRequested() {
		cur.SetYieldRequested(false)
		Yield()
	}
}

// RecomputeReadyPosition repositions t within its ready structure after
// its EffectivePriority has changed (donation or MLFQ recalculation). A
// no-op if t is not currently ready. It also yields the CPU if t now
// outranks the running thread.
func RecomputeReadyPosition(t *thread.Thread) {
	s := global
	s.mu.Lock()
	if t.ReadyElem() != nil {
		s.dequeue(t)
		s.enqueueReady(t)
	}
	s.mu.Unlock()
	YieldIfOutranked(t)
}

// SetPriority sets t's base priority, clamped to [PriMin, PriMax].
// Effective priority is only raised to match: it is updated immediately
// if t currently has no donors, or if the new base priority exceeds t's
// current effective priority, but a lowered base priority never drops a
// donation-boosted effective priority out from under the donor. Yields
// the CPU if the ready queue's new front thread now outranks t.
// Equivalent to thread_set_priority.
func SetPriority(t *thread.Thread, priority int) {
	if priority < thread.PriMin {
		priority = thread.PriMin
	}
	if priority > thread.PriMax {
		priority = thread.PriMax
	}

	s := global
	s.mu.Lock()
	t.BasePriority = priority
	noDonors := t.Donors == nil || t.Donors.Len() == 0
	if noDonors || priority > t.EffectivePriority {
		t.EffectivePriority = priority
	}
	if t.ReadyElem() != nil {
		s.dequeue(t)
		s.enqueueReady(t)
	}
	front := s.pickNext()
	outranked := front != nil && front != t && front.EffectivePriority > t.EffectivePriority
	s.mu.Unlock()

	if outranked {
		Yield()
	}
}

// AllThreads returns a snapshot slice of every live thread, for
// introspection (ps).
func AllThreads() []*thread.Thread {
	s := global
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*thread.Thread, 0, s.allList.Len())
	for e := s.allList.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*thread.Thread))
	}
	return out
}

// ActivePolicy returns the scheduler's configured policy.
func ActivePolicy() Policy {
	return global.policy
}
