package sched

import (
	"miniker/fixed"
	"miniker/thread"
)

// timerFreq is the number of Tick calls per simulated second, used to pace
// the once-a-second load_avg recalculation. PintOS's default is 100Hz.
const timerFreq = 100

// recalcPriorityPeriod is how often (in ticks) MLFQ recomputes every
// thread's priority from recent_cpu and nice (Section 4.D).
const recalcPriorityPeriod = 4

// Tick advances the simulated timer by one tick. It charges the running
// thread a tick of recent_cpu, and under PolicyMLFQ periodically
// recalculates load_avg, recent_cpu, and thread priorities, matching
// PintOS's timer_interrupt/thread_tick.
func Tick() {
	s := global
	s.mu.Lock()
	s.ticks++
	ticks := s.ticks
	cur := s.current

	s.wakeSleepers(ticks)

	if cur != nil {
		cur.RecentCpu = cur.RecentCpu.AddInt(1)
	}

	if s.policy == PolicyMLFQ {
		if ticks%timerFreq == 0 {
			s.recalcLoadAvg()
			for e := s.allList.Front(); e != nil; e = e.Next() {
				recalcRecentCpu(e.Value.(*thread.Thread), s.loadAvg)
			}
		}
		if ticks%recalcPriorityPeriod == 0 {
			for e := s.allList.Front(); e != nil; e = e.Next() {
				s.recalcPriority(e.Value.(*thread.Thread))
			}
		}
	}

	if cur != nil {
		cur.SetYieldRequested(true)
	}
	s.mu.Unlock()
}

// readyThreadCount counts threads that are Running or Ready, i.e. the
// ready_threads term of the load_avg formula. Assumes mu is held.
func (s *Scheduler) readyThreadCount() int {
	n := 0
	for e := s.allList.Front(); e != nil; e = e.Next() {
		t := e.Value.(*thread.Thread)
		if t.Status == thread.Running || t.Status == thread.Ready {
			n++
		}
	}
	return n
}

// recalcLoadAvg updates load_avg = (59/60)*load_avg + (1/60)*ready_threads.
// Assumes mu is held.
func (s *Scheduler) recalcLoadAvg() {
	ready := fixed.FromInt(s.readyThreadCount())
	fiftyNine := fixed.FromInt(59).DivInt(60)
	oneSixtieth := fixed.FromInt(1).DivInt(60)
	s.loadAvg = s.loadAvg.Mul(fiftyNine).Add(ready.Mul(oneSixtieth))
}

// recalcRecentCpu updates recent_cpu = (2*load_avg)/(2*load_avg+1) *
// recent_cpu + nice.
func recalcRecentCpu(t *thread.Thread, loadAvg fixed.Fixed) {
	twoLoadAvg := loadAvg.MulInt(2)
	coeff := twoLoadAvg.Div(twoLoadAvg.AddInt(1))
	t.RecentCpu = coeff.Mul(t.RecentCpu).AddInt(t.Nice)
}

// recalcPriority updates priority = PRI_MAX - (recent_cpu/4) - (nice*2),
// clamped to the valid priority band, then repositions t in the ready
// structure if it changed. Assumes mu is held.
func (s *Scheduler) recalcPriority(t *thread.Thread) {
	p := thread.PriMax - t.RecentCpu.DivInt(4).RoundToZero() - t.Nice*2
	if p < thread.PriMin {
		p = thread.PriMin
	}
	if p > thread.PriMax {
		p = thread.PriMax
	}
	if p == t.EffectivePriority {
		return
	}
	t.BasePriority = p
	t.EffectivePriority = p
	if t.ReadyElem() != nil {
		s.dequeue(t)
		s.enqueueReady(t)
	}
}

// SetNice sets the calling thread's nice value and immediately
// recalculates its priority (Section 4.D). Valid only under PolicyMLFQ.
func SetNice(t *thread.Thread, nice int) {
	if nice < thread.NiceMin {
		nice = thread.NiceMin
	}
	if nice > thread.NiceMax {
		nice = thread.NiceMax
	}
	s := global
	s.mu.Lock()
	t.Nice = nice
	s.recalcPriority(t)
	s.mu.Unlock()
	YieldIfOutranked(t)
}

// LoadAvg returns the current system load average.
func LoadAvg() fixed.Fixed {
	s := global
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadAvg
}
