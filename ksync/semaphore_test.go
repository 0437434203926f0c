package ksync

import (
	"testing"
	"time"

	"miniker/sched"
	"miniker/thread"
)

func TestSemaphoreUpWakesWaiter(t *testing.T) {
	sched.New(sched.PolicyPriority)
	sem := NewSemaphore(0)
	acquired := make(chan struct{})

	sched.Spawn("waiter", thread.PriDefault, func(self *thread.Thread) {
		sem.Down()
		close(acquired)
	})
	sched.Yield() // hand off to waiter so it blocks on sem.Down()

	select {
	case <-acquired:
		t.Fatal("waiter acquired before Up")
	default:
	}

	sem.Up()
	sched.Yield()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired after Up")
	}
}

func TestSemaphoreTryDown(t *testing.T) {
	sem := NewSemaphore(1)
	if !sem.TryDown() {
		t.Fatal("TryDown on value=1 should succeed")
	}
	if sem.TryDown() {
		t.Fatal("TryDown on value=0 should fail")
	}
}

func TestLockAcquireRelease(t *testing.T) {
	sched.New(sched.PolicyPriority)
	l := NewLock()
	l.Acquire()
	if !l.IsHeldByCurrent() {
		t.Fatal("lock should be held by current thread")
	}
	l.Release()
	if l.Holder() != nil {
		t.Fatal("lock should have no holder after release")
	}
}

// TestPriorityDonationRaisesHolderPriority reproduces the classic
// donation scenario: a low-priority thread holds a lock a much
// higher-priority thread then blocks on. The holder's effective priority
// must rise to the waiter's while it holds the lock, so a
// medium-priority thread cannot cut in line ahead of it.
func TestPriorityDonationRaisesHolderPriority(t *testing.T) {
	sched.New(sched.PolicyPriority)
	l := NewLock()
	gate := NewLock()
	holderAcquired := make(chan struct{})
	holderDone := make(chan struct{})
	acquired := NewSemaphore(0)

	gate.Acquire() // main holds gate so the holder thread blocks on it below

	holder := sched.Spawn("holder", thread.PriDefault-1, func(self *thread.Thread) {
		l.Acquire()
		close(holderAcquired)
		acquired.Up()
		gate.Acquire() // parks the holder here until main releases gate
		gate.Release()
		l.Release()
		close(holderDone)
	})

	acquired.Down() // main outranks holder, so block until holder has taken l
	<-holderAcquired

	sched.Spawn("waiter", thread.PriDefault+5, func(self *thread.Thread) {
		l.Acquire()
		l.Release()
	})

	if holder.EffectivePriority < thread.PriDefault+5 {
		t.Fatalf("holder effective priority = %d, want >= %d", holder.EffectivePriority, thread.PriDefault+5)
	}

	gate.Release()
	sched.Yield()

	select {
	case <-holderDone:
	case <-time.After(time.Second):
		t.Fatal("holder never finished")
	}

	if holder.HasDonors() {
		t.Error("holder should have no donors left after releasing the contended lock")
	}
}
