package sched

import (
	"testing"

	"miniker/fixed"
	"miniker/thread"
)

func TestTickChargesRecentCpuToRunningThread(t *testing.T) {
	New(PolicyMLFQ)
	cur := CurrentThread()
	before := cur.RecentCpu
	Tick()
	if cur.RecentCpu.RoundToZero() != before.AddInt(1).RoundToZero() {
		t.Fatalf("RecentCpu after tick = %v, want %v", cur.RecentCpu, before.AddInt(1))
	}
}

func TestRecalcPriorityPenalizesHighRecentCpu(t *testing.T) {
	New(PolicyMLFQ)
	tr := Spawn("busy", thread.PriDefault, func(self *thread.Thread) {})
	for i := 0; i < 100; i++ {
		tr.RecentCpu = tr.RecentCpu.AddInt(1)
	}
	global.mu.Lock()
	global.recalcPriority(tr)
	global.mu.Unlock()
	if tr.EffectivePriority >= thread.PriDefault {
		t.Fatalf("priority after heavy recent_cpu = %d, want < %d", tr.EffectivePriority, thread.PriDefault)
	}
}

func TestRecalcPriorityRoundsRecentCpuTowardZero(t *testing.T) {
	New(PolicyMLFQ)
	tr := Spawn("halfway", thread.PriDefault, func(self *thread.Thread) {})
	tr.Nice = 0
	tr.RecentCpu = fixed.FromInt(10) // 10/4 = 2.5, rounds to 2 toward zero, not 3

	global.mu.Lock()
	global.recalcPriority(tr)
	global.mu.Unlock()

	want := thread.PriMax - 2
	if tr.EffectivePriority != want {
		t.Fatalf("priority with recent_cpu=10 = %d, want %d (round 2.5 toward zero)", tr.EffectivePriority, want)
	}
}

func TestSetNiceLowersPriority(t *testing.T) {
	New(PolicyMLFQ)
	cur := CurrentThread()
	before := cur.EffectivePriority
	SetNice(cur, thread.NiceMax)
	if cur.EffectivePriority >= before {
		t.Fatalf("priority after raising nice = %d, want < %d", cur.EffectivePriority, before)
	}
}

func TestLoadAvgIncreasesWithReadyThreads(t *testing.T) {
	New(PolicyMLFQ)
	Spawn("a", thread.PriDefault, func(self *thread.Thread) { Sleep(1000) })
	Spawn("b", thread.PriDefault, func(self *thread.Thread) { Sleep(1000) })
	global.mu.Lock()
	global.recalcLoadAvg()
	got := global.loadAvg
	global.mu.Unlock()
	if got <= 0 {
		t.Fatalf("load avg = %v, want > 0", got)
	}
}
