// Package ksync provides the kernel's blocking synchronization primitives:
// counting semaphores and the priority-donating lock built on top of them.
//
// Every operation here runs with the scheduler's critical section held,
// the same way PintOS synch.c runs with interrupts disabled. In this
// single-CPU cooperative model that critical section is sched's internal
// mutex, taken for the duration of Block/Unblock/Yield.
package ksync

import (
	"container/list"

	kerrors "miniker/errors"
	"miniker/ilist"
	"miniker/sched"
	"miniker/thread"
)

// Semaphore is a classic counting semaphore (Section 4.A). Waiters are
// kept in priority order so Up always wakes the highest-priority blocked
// thread.
type Semaphore struct {
	value   int
	waiters *list.List // of *thread.Thread, ordered by descending effective priority
}

// NewSemaphore creates a semaphore with the given initial value.
func NewSemaphore(value int) *Semaphore {
	return &Semaphore{value: value, waiters: list.New()}
}

func byEffectivePriorityDesc(a, b any) bool {
	return a.(*thread.Thread).EffectivePriority > b.(*thread.Thread).EffectivePriority
}

// Down decrements the semaphore, blocking the calling thread while its
// value is zero. Equivalent to sema_down.
func (s *Semaphore) Down() {
	cur := sched.CurrentThread()
	for s.value == 0 {
		ilist.InsertOrdered(s.waiters, cur, byEffectivePriorityDesc)
		sched.Block(cur)
	}
	s.value--
}

// TryDown decrements the semaphore without blocking, reporting whether it
// succeeded. Equivalent to sema_try_down.
func (s *Semaphore) TryDown() bool {
	if s.value > 0 {
		s.value--
		return true
	}
	return false
}

// Up increments the semaphore and wakes the highest-priority waiter, if
// any, yielding if the woken thread now outranks the caller. Equivalent
// to sema_up.
func (s *Semaphore) Up() {
	s.value++
	if s.waiters.Len() == 0 {
		return
	}
	e := s.waiters.Front()
	s.waiters.Remove(e)
	woken := e.Value.(*thread.Thread)
	sched.Unblock(woken)
	sched.YieldIfOutranked(woken)
}

// Value returns the current semaphore value. For introspection only.
func (s *Semaphore) Value() int { return s.value }

// maxDonationDepth bounds the length of a donation chain (Section 4.C):
// donation must nest through real locks, and eight mirrors the deepest
// plausible lock-nesting depth in a teaching kernel.
const maxDonationDepth = 8

// Lock is a mutual-exclusion lock that supports priority donation.
// At most one thread may hold a Lock at a time; recursive acquisition by
// the holder is a programming error, not blocking.
type Lock struct {
	holder *thread.Thread
	sema   *Semaphore // binary semaphore, value 1 == free
	donors *list.List // *thread.Thread values that donated on this lock's account
}

// NewLock creates an unheld lock.
func NewLock() *Lock {
	return &Lock{sema: NewSemaphore(1), donors: list.New()}
}

// IsHeldByCurrent reports whether the calling thread holds l.
func (l *Lock) IsHeldByCurrent() bool {
	return l.holder == sched.CurrentThread()
}

// Holder returns the thread currently holding l, or nil.
func (l *Lock) Holder() *thread.Thread {
	return l.holder
}

// Acquire blocks until l is free, then takes it. If l is already held,
// the calling thread donates its effective priority along the chain of
// lock holders blocking it, bounded to maxDonationDepth nested locks.
func (l *Lock) Acquire() {
	cur := sched.CurrentThread()
	kerrors.Assert(!l.IsHeldByCurrent(), "ksync.Lock.Acquire", "current thread already holds this lock")

	if l.holder != nil {
		donateChain(cur, l, maxDonationDepth)
	}
	cur.WaitLock = l
	l.sema.Down()
	cur.WaitLock = nil
	l.holder = cur
}

// TryAcquire attempts to take l without blocking or donating.
func (l *Lock) TryAcquire() bool {
	if l.sema.TryDown() {
		l.holder = sched.CurrentThread()
		return true
	}
	return false
}

// Release gives up l. Any donations received on l's account are
// withdrawn and the releasing thread's effective priority is recomputed
// from its base priority and whatever donations remain outstanding on
// its other held locks.
func (l *Lock) Release() {
	cur := sched.CurrentThread()
	kerrors.Assert(l.IsHeldByCurrent(), "ksync.Lock.Release", "current thread does not hold this lock")

	l.holder = nil
	for e := l.donors.Front(); e != nil; {
		next := e.Next()
		removeDonor(cur, e.Value.(*thread.Thread))
		e = next
	}
	l.donors.Init()
	recomputeEffective(cur)
	sched.RecomputeReadyPosition(cur)
	l.sema.Up()
}

// donateChain walks the chain of lock holders starting at l, adding cur
// as a donor to each holder in turn, stopping at depthLeft links or once
// a holder is not itself waiting on another lock.
func donateChain(cur *thread.Thread, l *Lock, depthLeft int) {
	if depthLeft == 0 {
		return
	}
	holder := l.holder
	if holder == nil || holder == cur {
		return
	}
	addDonor(l, holder, cur)
	if wl, ok := holder.WaitLock.(*Lock); ok && wl != nil {
		donateChain(cur, wl, depthLeft-1)
	}
}

func addDonor(l *Lock, holder, donor *thread.Thread) {
	for e := l.donors.Front(); e != nil; e = e.Next() {
		if e.Value.(*thread.Thread) == donor {
			return
		}
	}
	l.donors.PushBack(donor)
	if holder.Donors == nil {
		holder.Donors = list.New()
	}
	holder.Donors.PushBack(donor)
	recomputeEffective(holder)
	sched.RecomputeReadyPosition(holder)
}

func removeDonor(holder, donor *thread.Thread) {
	if holder.Donors == nil {
		return
	}
	for e := holder.Donors.Front(); e != nil; e = e.Next() {
		if e.Value.(*thread.Thread) == donor {
			holder.Donors.Remove(e)
			return
		}
	}
}

// recomputeEffective sets t.EffectivePriority to the maximum of its base
// priority and every current donor's effective priority (Section 4.C).
func recomputeEffective(t *thread.Thread) {
	best := t.BasePriority
	if t.Donors != nil {
		for e := t.Donors.Front(); e != nil; e = e.Next() {
			if d := e.Value.(*thread.Thread); d.EffectivePriority > best {
				best = d.EffectivePriority
			}
		}
	}
	t.EffectivePriority = best
}
