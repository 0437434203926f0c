package sched

import (
	"testing"
	"time"

	"miniker/thread"
)

func TestSleepWakesAfterTicksElapse(t *testing.T) {
	New(PolicyPriority)
	woke := make(chan struct{})

	Spawn("sleeper", thread.PriDefault+1, func(self *thread.Thread) {
		Sleep(5)
		close(woke)
	})

	select {
	case <-woke:
		t.Fatal("sleeper woke before any ticks elapsed")
	case <-time.After(20 * time.Millisecond):
	}

	for i := 0; i < 5; i++ {
		Tick()
	}
	Yield()

	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("sleeper never woke after enough ticks")
	}
}

func TestTicksMonotonic(t *testing.T) {
	New(PolicyPriority)
	if Ticks() != 0 {
		t.Fatalf("Ticks() at boot = %d, want 0", Ticks())
	}
	Tick()
	Tick()
	if Ticks() != 2 {
		t.Fatalf("Ticks() after 2 ticks = %d, want 2", Ticks())
	}
}
